// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

// RabbitMQ startup dial configuration
const (
	// ConnectMaxRetries is the default number of dial attempts at startup.
	ConnectMaxRetries = 5

	// ConnectInitialBackoff is the initial delay before the second dial attempt.
	ConnectInitialBackoff = 500 * time.Millisecond

	// ConnectMaxBackoff is the upper bound for the dial backoff delay.
	ConnectMaxBackoff = 10 * time.Second

	// ConnectBackoffFactor is the multiplier applied to the backoff on each successive attempt.
	ConnectBackoffFactor = 2.0
)

// RabbitMQ Connection Monitor Configuration
const (
	// ConnectionMonitorInterval is the period between background RabbitMQ liveness checks.
	ConnectionMonitorInterval = 10 * time.Second
)

// Circuit breaker configuration shared by the broker and history breakers.
const (
	CircuitBreakerMaxRequests = 3
	CircuitBreakerInterval    = 60 * time.Second
	CircuitBreakerTimeout     = 30 * time.Second
	CircuitBreakerThreshold   = 5
)

// Circuit breaker names.
const (
	BreakerBroker  = "broker"
	BreakerHistory = "history"
)

// Circuit breaker states reported by the manager.
const (
	CircuitBreakerStateClosed   = "closed"
	CircuitBreakerStateOpen     = "open"
	CircuitBreakerStateHalfOpen = "half-open"
)
