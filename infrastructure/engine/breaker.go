package engine

import (
	"time"

	"patchbay/application/ports"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the engine circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "audio-engine",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerEngine decorates an AudioEngine with a circuit breaker so a
// repeatedly failing engine degrades into fast rejections instead of
// stalling every store mutation
type BreakerEngine struct {
	inner  ports.AudioEngine
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerEngine wraps an engine with circuit breaking
func NewBreakerEngine(inner ports.AudioEngine, config BreakerConfig, logger *zap.Logger) *BreakerEngine {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("engine circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &BreakerEngine{
		inner:  inner,
		cb:     cb,
		logger: logger,
	}
}

// CreateNode instantiates a native node through the breaker
func (e *BreakerEngine) CreateNode(nodeType string) (ports.EngineNode, error) {
	result, err := e.cb.Execute(func() (any, error) {
		return e.inner.CreateNode(nodeType)
	})
	if err != nil {
		return nil, err
	}
	return result.(ports.EngineNode), nil
}

// DestroyNode releases a node through the breaker
func (e *BreakerEngine) DestroyNode(node ports.EngineNode) error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.inner.DestroyNode(node)
	})
	return err
}

// StartContext resumes the audio context
func (e *BreakerEngine) StartContext() error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.inner.StartContext()
	})
	return err
}

// StopContext suspends the audio context
func (e *BreakerEngine) StopContext() error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.inner.StopContext()
	})
	return err
}

// Running reports whether the context is running; reads bypass the breaker
func (e *BreakerEngine) Running() bool {
	return e.inner.Running()
}

// LoadBuffer decodes a buffer through the breaker
func (e *BreakerEngine) LoadBuffer(url string) error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.inner.LoadBuffer(url)
	})
	return err
}

// PlayBuffer plays a buffer through the breaker
func (e *BreakerEngine) PlayBuffer(url string) error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.inner.PlayBuffer(url)
	})
	return err
}
