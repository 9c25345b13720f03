// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/mongodb/subscription"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/pongo"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/rabbitmq"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/redis"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// UseCase is a struct to implement the services methods
type UseCase struct {
	// Subscriber owns the queue consumers running in this process.
	Subscriber rabbitmq.Subscriber

	// SubscriptionRepo provides an abstraction on top of the subscription data source.
	SubscriptionRepo subscription.Repository

	// HistoryRepo keeps the most recent received messages per queue.
	HistoryRepo redis.HistoryRepository

	// Renderer builds the log line of a received message.
	Renderer *pongo.MessageRenderer

	// BreakerManager guards calls to the broker and to the history store.
	BreakerManager *pkg.CircuitBreakerManager

	// ReceivedCounter is the messages.received instrument. Optional.
	ReceivedCounter metric.Int64Counter

	// DefaultQueue is the queue registered by the values endpoint.
	DefaultQueue string

	// Logger is used where no request context is available.
	Logger log.Logger

	counts sync.Map
}

func (uc *UseCase) defaultQueue() string {
	if uc.DefaultQueue == "" {
		return constant.DefaultQueue
	}

	return uc.DefaultQueue
}

func (uc *UseCase) logger() log.Logger {
	if uc.Logger == nil {
		return &log.NoneLogger{}
	}

	return uc.Logger
}

func (uc *UseCase) counter(queue string) *atomic.Int64 {
	v, _ := uc.counts.LoadOrStore(queue, new(atomic.Int64))

	return v.(*atomic.Int64)
}

// ReceivedCount returns how many messages this process received on queue.
func (uc *UseCase) ReceivedCount(queue string) int64 {
	v, ok := uc.counts.Load(queue)
	if !ok {
		return 0
	}

	return v.(*atomic.Int64).Load()
}

func (uc *UseCase) countReceived(ctx context.Context, queue string) {
	uc.counter(queue).Add(1)

	if uc.ReceivedCounter != nil {
		uc.ReceivedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("queue", queue)))
	}
}

// withLiveState fills the fields that are not persisted: the received counter, and the
// status, which is interrupted when a registration is active but no consumer runs.
func (uc *UseCase) withLiveState(sub *model.Subscription) *model.Subscription {
	sub.ReceivedCount = uc.ReceivedCount(sub.Queue)

	if uc.Subscriber.IsActive(sub.Queue) {
		sub.Status = constant.SubscriptionStatusActive
	} else if sub.Status == constant.SubscriptionStatusActive {
		sub.Status = constant.SubscriptionStatusInterrupted
	}

	return sub
}
