// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
)

// FullJitter returns a random duration in [0, baseDelay], capped at ConnectMaxBackoff.
// Uses crypto/rand for unbiased distribution.
func FullJitter(baseDelay time.Duration) time.Duration {
	if baseDelay <= 0 {
		return 0
	}

	limit := baseDelay
	if limit > constant.ConnectMaxBackoff {
		limit = constant.ConnectMaxBackoff
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}

	return time.Duration(n.Int64())
}

// NextBackoff doubles the current delay, capped at ConnectMaxBackoff.
func NextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * constant.ConnectBackoffFactor)
	if next > constant.ConnectMaxBackoff {
		return constant.ConnectMaxBackoff
	}

	return next
}
