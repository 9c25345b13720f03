// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

const (
	// HistoryKeyPrefix is the Redis key prefix for received-message history lists.
	HistoryKeyPrefix = "consumer:history"

	// DefaultHistoryMaxLength is the number of messages kept per queue.
	DefaultHistoryMaxLength = 100

	// DefaultHistoryTTL is the expiration refreshed on every append.
	DefaultHistoryTTL = 24 * time.Hour
)
