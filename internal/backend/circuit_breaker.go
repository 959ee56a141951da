package backend

import (
	"fmt"

	"latexify/internal/config"
	"latexify/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// OperationBreaker wraps one backend operation family with circuit breaker
// protection over raw response bytes
type OperationBreaker struct {
	cb *gobreaker.CircuitBreaker[[]byte]
}

// NewOperationBreaker creates a circuit breaker configured for a specific operation family
func NewOperationBreaker(operation string, cfg *config.OperationConfig, logger *errors.Logger) *OperationBreaker {
	// If circuit breaker is disabled, return nil to indicate no circuit breaker
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("Backend-%s", operation),
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.CircuitBreaker.MinRequests &&
				failureRatio >= cfg.CircuitBreaker.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation", operation,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.CircuitBreaker.MaxRequests,
				"failure_threshold", cfg.CircuitBreaker.FailureThreshold)
		},
	}

	return &OperationBreaker{
		cb: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// Execute executes the provided function with circuit breaker protection
func (ob *OperationBreaker) Execute(fn func() ([]byte, error)) ([]byte, error) {
	if ob == nil || ob.cb == nil {
		// If breaker is disabled/nil, just execute the function directly
		return fn()
	}
	return ob.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (ob *OperationBreaker) GetStats() map[string]any {
	if ob == nil || ob.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    ob.cb.Name(),
		"state":   ob.cb.State().String(),
		"counts":  ob.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (ob *OperationBreaker) IsHealthy() bool {
	if ob == nil || ob.cb == nil {
		return true // If no circuit breaker, consider it healthy
	}
	return ob.cb.State() == gobreaker.StateClosed
}

// breakerSet holds the per-operation breakers. Operations without an entry
// pass through unprotected.
type breakerSet struct {
	breakers map[string]*OperationBreaker
}

func newBreakerSet(cfg *config.Config, logger *errors.Logger) *breakerSet {
	generateCfg := cfg.GetGenerateConfig()
	updateCfg := cfg.GetUpdateConfig()
	compileCfg := cfg.GetCompileConfig()
	analyzeCfg := cfg.GetAnalyzeConfig()

	return &breakerSet{
		breakers: map[string]*OperationBreaker{
			OpGenerate: NewOperationBreaker(OpGenerate, &generateCfg, logger),
			OpUpdate:   NewOperationBreaker(OpUpdate, &updateCfg, logger),
			OpCompile:  NewOperationBreaker(OpCompile, &compileCfg, logger),
			OpAnalyze:  NewOperationBreaker(OpAnalyze, &analyzeCfg, logger),
		},
	}
}

func (bs *breakerSet) Execute(operation string, fn func() ([]byte, error)) ([]byte, error) {
	return bs.breakers[operation].Execute(fn)
}

// Stats returns statistics for all configured breakers
func (bs *breakerSet) Stats() map[string]any {
	stats := make(map[string]any, len(bs.breakers))
	for operation, breaker := range bs.breakers {
		stats[operation] = breaker.GetStats()
	}
	return stats
}
