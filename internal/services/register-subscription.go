// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// RegisterSubscription starts consuming queue and records the registration.
// A queue that already has a running consumer keeps it.
func (uc *UseCase) RegisterSubscription(ctx context.Context, queue string) (*model.Subscription, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.register_subscription")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", queue),
	)

	if err := model.ValidateQueueName(queue); err != nil {
		libOpentelemetry.HandleSpanBusinessErrorEvent(&span, "Invalid queue name", err)

		return nil, err
	}

	logger.Infof("Registering consumer on queue %s", queue)

	tag, err := uc.BreakerManager.Execute(constant.BreakerBroker, func() (any, error) {
		return uc.Subscriber.Subscribe(ctx, queue, uc.HandleMessage)
	})
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to subscribe to queue", err)

		logger.Errorf("Error subscribing to queue %s: %v", queue, err)

		return nil, pkg.ValidateBusinessError(constant.ErrBrokerUnavailable, "Subscription")
	}

	sub := model.NewSubscription(queue, tag.(string))

	saved, err := uc.SubscriptionRepo.Upsert(ctx, sub)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to save subscription", err)

		logger.Warnf("Consumer on queue %s is running but its registration was not saved: %v", queue, err)

		return uc.withLiveState(sub), nil
	}

	return uc.withLiveState(saved), nil
}

// RegisterDefaultSubscription registers the consumer of the default queue.
func (uc *UseCase) RegisterDefaultSubscription(ctx context.Context) (*model.Subscription, error) {
	return uc.RegisterSubscription(ctx, uc.defaultQueue())
}
