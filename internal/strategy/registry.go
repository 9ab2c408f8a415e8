package strategy

import (
	"fmt"
	"time"

	"FinFold/internal/domain/service"
	"FinFold/internal/regress"
	"FinFold/internal/scaling"
)

// Registry resolves strategy names from run specs into factories. Factories
// hand each run its own instance, so two runs never share fitted state.
type Registry struct {
	remoteURL     string
	remoteTimeout time.Duration
	ridgeLambda   float64
}

// Option configures the Registry.
type Option func(*Registry)

// WithRemote sets the endpoint for the "remote" model strategy.
func WithRemote(baseURL string, timeout time.Duration) Option {
	return func(r *Registry) {
		r.remoteURL = baseURL
		r.remoteTimeout = timeout
	}
}

// WithRidgeLambda sets the penalty used by the "ridge" strategy.
func WithRidgeLambda(lambda float64) Option {
	return func(r *Registry) { r.ridgeLambda = lambda }
}

// NewRegistry builds a registry with the built-in strategies.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{ridgeLambda: 1.0}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scaler resolves a scaler factory by name.
func (r *Registry) Scaler(name string) (service.ScalerFactory, error) {
	switch name {
	case "standard", "":
		return func() service.Scaler { return scaling.NewStandard() }, nil
	case "minmax":
		return func() service.Scaler { return scaling.NewMinMax() }, nil
	default:
		return nil, fmt.Errorf("unknown scaler %q", name)
	}
}

// Model resolves a model factory by name.
func (r *Registry) Model(name string) (service.ModelFactory, error) {
	switch name {
	case "ols", "":
		return func() service.Model { return regress.NewOLS() }, nil
	case "ridge":
		lambda := r.ridgeLambda
		return func() service.Model { return regress.NewRidge(lambda) }, nil
	case "remote":
		if r.remoteURL == "" {
			return nil, fmt.Errorf("remote model requested but no endpoint configured")
		}
		url, timeout := r.remoteURL, r.remoteTimeout
		return func() service.Model { return NewRemoteModel(url, timeout) }, nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}
