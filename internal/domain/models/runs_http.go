package models

// Requests for the runs HTTP endpoints. Defined in domain for consistency and reuse.

type RunRequest struct {
	InitialTrainSpan string   `json:"initial_train_span" validate:"required"`
	TestSpan         string   `json:"test_span" validate:"required"`
	StepSpan         string   `json:"step_span" validate:"required"`
	FeatureColumns   []string `json:"feature_columns" validate:"required,min=1,dive,required"`
	TargetColumn     string   `json:"target_column" validate:"required"`
	Scaler           string   `json:"scaler" default:"standard" validate:"oneof=standard minmax"`
	Model            string   `json:"model" default:"ols" validate:"oneof=ols ridge remote"`
	PnLUpper         float64  `json:"pnl_upper"`
	PnLLower         float64  `json:"pnl_lower"`
	Async            bool     `json:"async"`
}

type RunRowsRequest struct {
	ID     string `param:"id" validate:"required"`
	Offset int    `query:"offset" default:"0" validate:"gte=0"`
	Limit  int    `query:"limit" default:"1000" validate:"gte=1,lte=100000"`
}
