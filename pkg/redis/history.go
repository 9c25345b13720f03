// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package redis

import (
	"context"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
)

// HistoryRepository keeps the most recent messages received on each queue.
//
//go:generate mockgen --destination=history.mock.go --package=redis --copyright_file=../../COPYRIGHT . HistoryRepository
type HistoryRepository interface {
	Append(ctx context.Context, msg model.ReceivedMessage) error
	List(ctx context.Context, queue string, limit int) ([]model.ReceivedMessage, error)
	Clear(ctx context.Context, queue string) error
}
