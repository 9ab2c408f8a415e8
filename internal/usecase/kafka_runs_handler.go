package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"FinFold/internal/domain/models"
	pkgkafka "FinFold/pkg/kafka"
	applogger "FinFold/pkg/logger"
	"FinFold/pkg/util"
)

// KafkaRunsHandler consumes run requests from the runs topic and executes
// them. Spans arrive as strings ("30d", "720h") and are parsed here.
type KafkaRunsHandler struct {
	topic  string
	runner *Runner
	log    *applogger.Logger
}

// NewKafkaRunsHandler builds the handler for the given topic.
func NewKafkaRunsHandler(topic string, runner *Runner, log *applogger.Logger) *KafkaRunsHandler {
	return &KafkaRunsHandler{topic: topic, runner: runner, log: log}
}

func (h *KafkaRunsHandler) Topic() string { return h.topic }

func (h *KafkaRunsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ID               string   `json:"id"`
		InitialTrainSpan string   `json:"initial_train_span"`
		TestSpan         string   `json:"test_span"`
		StepSpan         string   `json:"step_span"`
		FeatureColumns   []string `json:"feature_columns"`
		TargetColumn     string   `json:"target_column"`
		Scaler           string   `json:"scaler"`
		Model            string   `json:"model"`
		PnLUpper         float64  `json:"pnl_upper"`
		PnLLower         float64  `json:"pnl_lower"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("unmarshal run request: %w", err)
	}

	initialTrain, err := util.ParseSpan(m.InitialTrainSpan)
	if err != nil {
		return fmt.Errorf("bad initial_train_span %q: %w", m.InitialTrainSpan, err)
	}
	test, err := util.ParseSpan(m.TestSpan)
	if err != nil {
		return fmt.Errorf("bad test_span %q: %w", m.TestSpan, err)
	}
	step, err := util.ParseSpan(m.StepSpan)
	if err != nil {
		return fmt.Errorf("bad step_span %q: %w", m.StepSpan, err)
	}

	spec := models.RunSpec{
		ID:               m.ID,
		InitialTrainSpan: initialTrain,
		TestSpan:         test,
		StepSpan:         step,
		FeatureColumns:   m.FeatureColumns,
		TargetColumn:     m.TargetColumn,
		Scaler:           m.Scaler,
		Model:            m.Model,
		PnLUpper:         m.PnLUpper,
		PnLLower:         m.PnLLower,
	}

	h.log.Info("run request received",
		applogger.String("topic", h.topic),
		applogger.String("run_id", spec.ID),
	)
	_, err = h.runner.Execute(ctx, spec)
	return err
}

var _ pkgkafka.MessageHandler = (*KafkaRunsHandler)(nil)
