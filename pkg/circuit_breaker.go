// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is wrapped by Execute when a breaker rejects the call.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitBreakerManager manages named circuit breakers around external dependencies.
type CircuitBreakerManager struct {
	breakers map[string]*gobreaker.CircuitBreaker
	mu       sync.RWMutex
	logger   log.Logger
}

// NewCircuitBreakerManager creates a new circuit breaker manager
func NewCircuitBreakerManager(logger log.Logger) *CircuitBreakerManager {
	return &CircuitBreakerManager{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		logger:   logger,
	}
}

func (cbm *CircuitBreakerManager) settings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        fmt.Sprintf("dependency-%s", name),
		MaxRequests: constant.CircuitBreakerMaxRequests,
		Interval:    constant.CircuitBreakerInterval,
		Timeout:     constant.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= constant.CircuitBreakerThreshold ||
				(counts.Requests >= 10 && failureRatio >= 0.5)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			cbm.logger.Warnf("Circuit Breaker [%s] state changed: %s -> %s", name, from.String(), to.String())

			switch to {
			case gobreaker.StateOpen:
				cbm.logger.Errorf("Circuit Breaker [%s] OPENED - dependency is unhealthy, requests will fast-fail", name)
			case gobreaker.StateHalfOpen:
				cbm.logger.Infof("Circuit Breaker [%s] HALF-OPEN - testing dependency recovery", name)
			case gobreaker.StateClosed:
				cbm.logger.Infof("Circuit Breaker [%s] CLOSED - dependency is healthy", name)
			}
		},
	}
}

// GetOrCreate returns existing circuit breaker or creates a new one
func (cbm *CircuitBreakerManager) GetOrCreate(name string) *gobreaker.CircuitBreaker {
	cbm.mu.RLock()
	breaker, exists := cbm.breakers[name]
	cbm.mu.RUnlock()

	if exists {
		return breaker
	}

	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists = cbm.breakers[name]; exists {
		return breaker
	}

	breaker = gobreaker.NewCircuitBreaker(cbm.settings(name))
	cbm.breakers[name] = breaker

	cbm.logger.Infof("Created circuit breaker for dependency: %s", name)

	return breaker
}

// Execute runs fn through the named circuit breaker.
func (cbm *CircuitBreakerManager) Execute(name string, fn func() (any, error)) (any, error) {
	breaker := cbm.GetOrCreate(name)

	result, err := breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			cbm.logger.Warnf("Circuit breaker [%s] is OPEN - request rejected immediately", name)

			return nil, fmt.Errorf("dependency %s is currently unavailable: %w", name, ErrCircuitOpen)
		}

		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			cbm.logger.Warnf("Circuit breaker [%s] is HALF-OPEN - too many test requests", name)

			return nil, fmt.Errorf("dependency %s is recovering: %w", name, ErrCircuitOpen)
		}
	}

	return result, err
}

// GetState returns the current state of a circuit breaker
func (cbm *CircuitBreakerManager) GetState(name string) string {
	cbm.mu.RLock()
	breaker, exists := cbm.breakers[name]
	cbm.mu.RUnlock()

	if !exists {
		return "not_initialized"
	}

	switch breaker.State() {
	case gobreaker.StateClosed:
		return constant.CircuitBreakerStateClosed
	case gobreaker.StateOpen:
		return constant.CircuitBreakerStateOpen
	case gobreaker.StateHalfOpen:
		return constant.CircuitBreakerStateHalfOpen
	default:
		return "unknown"
	}
}

// Reset replaces the named breaker with a fresh closed one.
func (cbm *CircuitBreakerManager) Reset(name string) {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	if _, exists := cbm.breakers[name]; exists {
		cbm.breakers[name] = gobreaker.NewCircuitBreaker(cbm.settings(name))
		cbm.logger.Infof("Circuit breaker reset completed for dependency: %s", name)
	}
}

// IsHealthy returns false only while the breaker is open.
func (cbm *CircuitBreakerManager) IsHealthy(name string) bool {
	return cbm.GetState(name) != constant.CircuitBreakerStateOpen
}
