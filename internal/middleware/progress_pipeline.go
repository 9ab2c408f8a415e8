package middleware

import (
	"sync"

	"FinFold/internal/domain/models"
	domrepo "FinFold/internal/domain/repository"
)

// ProgressPipeline sits between the evaluation loop and live subscribers.
// Window events fan out to every subscriber of the emitting run; a slow
// subscriber drops events rather than stalling the run.
type ProgressPipeline struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	bufSize int
	metrics domrepo.Metrics
}

type subscriber struct {
	ch   chan models.WindowEvent
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// PipelineOption configures ProgressPipeline.
type PipelineOption func(*ProgressPipeline)

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(n int) PipelineOption {
	return func(p *ProgressPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewProgressPipeline creates a pipeline.
func NewProgressPipeline(metrics domrepo.Metrics, opts ...PipelineOption) *ProgressPipeline {
	p := &ProgressPipeline{
		subs:    make(map[string]map[*subscriber]struct{}),
		bufSize: 64,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish delivers the event to all subscribers of its run. Never blocks.
func (p *ProgressPipeline) Publish(ev models.WindowEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for sub := range p.subs[ev.RunID] {
		select {
		case sub.ch <- ev:
		default:
			if p.metrics != nil {
				p.metrics.RecordError("progress_drop")
			}
		}
	}
}

// Subscribe registers a listener for one run. The returned cancel func
// unregisters and closes the channel; calling it after CloseRun is safe.
func (p *ProgressPipeline) Subscribe(runID string) (<-chan models.WindowEvent, func()) {
	sub := &subscriber{ch: make(chan models.WindowEvent, p.bufSize)}

	p.mu.Lock()
	if p.subs[runID] == nil {
		p.subs[runID] = make(map[*subscriber]struct{})
	}
	p.subs[runID][sub] = struct{}{}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if set, ok := p.subs[runID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(p.subs, runID)
			}
		}
		p.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// CloseRun disconnects every subscriber of a finished run.
func (p *ProgressPipeline) CloseRun(runID string) {
	p.mu.Lock()
	set := p.subs[runID]
	delete(p.subs, runID)
	p.mu.Unlock()

	for sub := range set {
		sub.close()
	}
}

// SubscriberCount reports active listeners for a run.
func (p *ProgressPipeline) SubscriberCount(runID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs[runID])
}
