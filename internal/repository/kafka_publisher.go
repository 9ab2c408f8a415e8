package repository

import (
	"context"

	"FinFold/internal/domain/models"
	domrepo "FinFold/internal/domain/repository"
	pkgkafka "FinFold/pkg/kafka"
)

// KafkaPublisher emits run summaries and prediction batches to the results
// topic. Messages are keyed by run ID so a hash balancer keeps each run's
// events in order.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher wraps a producer for the given results topic.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

type resultEnvelope struct {
	Kind    string                    `json:"kind"` // "summary" or "rows"
	Summary *models.RunSummary        `json:"summary,omitempty"`
	RunID   string                    `json:"run_id,omitempty"`
	Rows    []models.PredictionRecord `json:"rows,omitempty"`
}

func (p *KafkaPublisher) PublishSummary(ctx context.Context, s *models.RunSummary) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.RunID), resultEnvelope{
		Kind:    "summary",
		Summary: s,
	})
}

func (p *KafkaPublisher) PublishRows(ctx context.Context, runID string, rows []models.PredictionRecord) error {
	if len(rows) == 0 {
		return nil
	}

	// One message per chunk keeps payloads under broker limits.
	const chunkSize = 1000
	msgs := make([]pkgkafka.Message, 0, (len(rows)+chunkSize-1)/chunkSize)
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(runID),
			Value: resultEnvelope{Kind: "rows", RunID: runID, Rows: rows[start:end]},
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)
