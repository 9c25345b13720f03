// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package rabbitmq

import (
	"context"
	"errors"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
)

// ErrNotSubscribed is returned when no consumer is running for a queue.
var ErrNotSubscribed = errors.New("no active consumer for queue")

// ErrSubscriberClosed is returned by Subscribe after Close.
var ErrSubscriberClosed = errors.New("subscriber is closed")

// MessageHandlerFunc processes one delivery already decoded into a ReceivedMessage.
type MessageHandlerFunc func(ctx context.Context, msg model.ReceivedMessage) error

// Subscriber manages queue consumers.
//
//go:generate mockgen --destination=subscriber.mock.go --package=rabbitmq --copyright_file=../../COPYRIGHT . Subscriber
type Subscriber interface {
	Subscribe(ctx context.Context, queue string, handler MessageHandlerFunc) (string, error)
	Unsubscribe(ctx context.Context, queue string) error
	IsActive(queue string) bool
	ActiveQueues() []string
	Close() error
}
