// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

// HTTP Pagination Defaults
const (
	DefaultPaginationLimit    = 10
	DefaultMaxPaginationLimit = 100
)

// ReadinessCheckTimeout bounds every dependency check of the /ready endpoint.
const ReadinessCheckTimeout = 2 * time.Second
