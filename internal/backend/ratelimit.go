package backend

import (
	"context"
	"sync"
	"time"

	"latexify/internal/errors"

	"golang.org/x/time/rate"
)

// LimiterManager manages a collection of rate limiters keyed by operation
// family, throttling outbound requests to the backend.
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	onWait   func(operation string)
	logger   *errors.Logger
}

// NewLimiterManager creates a new manager.
// requestsPerMin is the number of requests allowed per minute per operation.
// burstCapacity is the token bucket size.
func NewLimiterManager(requestsPerMin, burstCapacity int, logger *errors.Logger) *LimiterManager {
	// The rate.Limit is specified in requests per second.
	r := rate.Limit(float64(requestsPerMin) / 60.0)

	return &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burstCapacity,
		logger:   logger,
	}
}

// GetLimiter retrieves or creates a limiter for a given operation.
func (m *LimiterManager) GetLimiter(operation string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[operation]
	if !exists {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[operation] = limiter
	}

	return limiter
}

// Wait blocks until the operation may proceed or the context is done
func (m *LimiterManager) Wait(ctx context.Context, operation string) error {
	limiter := m.GetLimiter(operation)

	// Fast path when a token is available.
	if limiter.Allow() {
		return nil
	}

	if m.onWait != nil {
		m.onWait(operation)
	}
	if m.logger != nil {
		m.logger.Debug("Waiting for rate limiter", "operation", operation)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Debug("Rate limiter wait completed",
			"operation", operation,
			"waited", time.Since(start))
	}
	return nil
}

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"active_limiters": len(m.limiters),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
	}
}
