// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

// MongoDB collection names.
const (
	MongoCollectionSubscription = "subscriptions"
)

// DefaultMongoMaxPoolSize is used when MONGO_MAX_POOL_SIZE is not set.
const DefaultMongoMaxPoolSize = 100

// MongoIndexCreateTimeout bounds index creation at startup.
const MongoIndexCreateTimeout = 30 * time.Second
