// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"errors"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/rabbitmq"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// CancelSubscription stops the consumer of queue, marks its registration stopped
// and drops the message history kept for it.
func (uc *UseCase) CancelSubscription(ctx context.Context, queue string) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.cancel_subscription")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", queue),
	)

	if _, err := uc.SubscriptionRepo.FindByQueue(ctx, queue); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to find subscription", err)

		logger.Errorf("Error finding subscription of queue %s: %v", queue, err)

		return err
	}

	if err := uc.Subscriber.Unsubscribe(ctx, queue); err != nil {
		if !errors.Is(err, rabbitmq.ErrNotSubscribed) {
			libOpentelemetry.HandleSpanError(&span, "Failed to unsubscribe", err)

			logger.Errorf("Error cancelling consumer on queue %s: %v", queue, err)

			return pkg.ValidateBusinessError(constant.ErrBrokerUnavailable, "Subscription")
		}

		logger.Infof("No running consumer on queue %s", queue)
	}

	if err := uc.SubscriptionRepo.UpdateStatus(ctx, queue, constant.SubscriptionStatusStopped); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update subscription status", err)

		logger.Errorf("Error marking subscription of queue %s stopped: %v", queue, err)

		return err
	}

	uc.clearHistory(ctx, queue)

	logger.Infof("Subscription of queue %s stopped", queue)

	return nil
}

// clearHistory is best effort: the registration is already stopped, and the
// history expires on its own TTL if Redis is unavailable now.
func (uc *UseCase) clearHistory(ctx context.Context, queue string) {
	if uc.HistoryRepo == nil {
		return
	}

	logger := libCommons.NewLoggerFromContext(ctx)

	if _, err := uc.BreakerManager.Execute(constant.BreakerHistory, func() (any, error) {
		return nil, uc.HistoryRepo.Clear(ctx, queue)
	}); err != nil {
		logger.Warnf("History of queue %s not cleared: %v", queue, err)
	}
}
