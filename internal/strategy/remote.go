package strategy

import (
	"context"
	"fmt"
	"time"

	"FinFold/internal/domain/service"
	xhttp "FinFold/pkg/http"
)

// RemoteModel delegates fitting and prediction to an external model service
// over JSON HTTP. Fit registers the training set and stores the returned
// model ID; Predict references it.
type RemoteModel struct {
	baseURL string
	client  *xhttp.Client
	modelID string
}

// NewRemoteModel builds a client for the model service.
func NewRemoteModel(baseURL string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteModel{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithClientTimeout(timeout)),
	}
}

type remoteFitRequest struct {
	Features [][]float64 `json:"features"`
	Targets  []float64   `json:"targets"`
}

type remoteFitResponse struct {
	ModelID string `json:"model_id"`
}

type remotePredictRequest struct {
	ModelID  string      `json:"model_id"`
	Features [][]float64 `json:"features"`
}

type remotePredictResponse struct {
	Predictions []float64 `json:"predictions"`
}

func (m *RemoteModel) Fit(x [][]float64, y []float64) error {
	if m.baseURL == "" {
		return fmt.Errorf("remote model: base URL not configured")
	}

	var resp remoteFitResponse
	err := m.post(context.Background(), "/v1/fit", remoteFitRequest{Features: x, Targets: y}, &resp)
	if err != nil {
		return fmt.Errorf("remote fit: %w", err)
	}
	if resp.ModelID == "" {
		return fmt.Errorf("remote fit: empty model id")
	}
	m.modelID = resp.ModelID
	return nil
}

func (m *RemoteModel) Predict(x [][]float64) ([]float64, error) {
	if m.modelID == "" {
		return nil, fmt.Errorf("remote model: predict before fit")
	}

	var resp remotePredictResponse
	err := m.post(context.Background(), "/v1/predict", remotePredictRequest{ModelID: m.modelID, Features: x}, &resp)
	if err != nil {
		return nil, fmt.Errorf("remote predict: %w", err)
	}
	if len(resp.Predictions) != len(x) {
		return nil, fmt.Errorf("remote predict: %d predictions for %d rows", len(resp.Predictions), len(x))
	}
	return resp.Predictions, nil
}

func (m *RemoteModel) post(ctx context.Context, path string, payload, dest interface{}) error {
	return m.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "POST",
		URL:    m.baseURL + path,
		Body:   payload,
	}, dest)
}

var _ service.Model = (*RemoteModel)(nil)
