// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// GetAllSubscriptions lists every registration with its live status and counter.
func (uc *UseCase) GetAllSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_all_subscriptions")
	defer span.End()

	span.SetAttributes(attribute.String("app.request.request_id", reqID))

	subs, err := uc.SubscriptionRepo.FindAll(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list subscriptions", err)

		logger.Errorf("Error listing subscriptions: %v", err)

		return nil, err
	}

	for _, sub := range subs {
		uc.withLiveState(sub)
	}

	return subs, nil
}

// GetSubscriptionByQueue returns the registration of queue with its live status and counter.
func (uc *UseCase) GetSubscriptionByQueue(ctx context.Context, queue string) (*model.Subscription, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_subscription_by_queue")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", queue),
	)

	sub, err := uc.SubscriptionRepo.FindByQueue(ctx, queue)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to find subscription", err)

		logger.Errorf("Error finding subscription of queue %s: %v", queue, err)

		return nil, err
	}

	return uc.withLiveState(sub), nil
}
