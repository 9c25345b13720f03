// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

const markTimeout = 5 * time.Second

// ResumeSubscriptions registers again every active or interrupted registration.
// Registrations that cannot be resumed are marked interrupted. It returns how many were resumed.
func (uc *UseCase) ResumeSubscriptions(ctx context.Context) (int, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.resume_subscriptions")
	defer span.End()

	span.SetAttributes(attribute.String("app.request.request_id", reqID))

	subs, err := uc.SubscriptionRepo.FindByStatus(ctx, constant.SubscriptionStatusActive, constant.SubscriptionStatusInterrupted)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list subscriptions to resume", err)

		logger.Errorf("Error listing subscriptions to resume: %v", err)

		return 0, err
	}

	resumed := 0

	for _, sub := range subs {
		if _, err := uc.RegisterSubscription(ctx, sub.Queue); err != nil {
			logger.Errorf("Failed to resume consumer on queue %s: %v", sub.Queue, err)

			if err := uc.SubscriptionRepo.UpdateStatus(ctx, sub.Queue, constant.SubscriptionStatusInterrupted); err != nil {
				logger.Errorf("Error marking subscription of queue %s interrupted: %v", sub.Queue, err)
			}

			continue
		}

		resumed++
	}

	span.SetAttributes(attribute.Int("app.subscriptions.resumed", resumed))
	logger.Infof("Resumed %d of %d subscriptions", resumed, len(subs))

	return resumed, nil
}

// MarkSubscriptionLost records that the consumer of queue stopped without being cancelled.
// It is the callback of the subscriber, which carries no request context.
func (uc *UseCase) MarkSubscriptionLost(queue string) {
	logger := uc.logger()

	ctx, cancel := context.WithTimeout(libCommons.ContextWithLogger(context.Background(), logger), markTimeout)
	defer cancel()

	if err := uc.SubscriptionRepo.UpdateStatus(ctx, queue, constant.SubscriptionStatusInterrupted); err != nil {
		logger.Errorf("Error marking subscription of queue %s interrupted: %v", queue, err)

		return
	}

	logger.Warnf("Subscription of queue %s interrupted", queue)
}

// MarkAllInterrupted marks every active registration interrupted and returns how many were marked.
func (uc *UseCase) MarkAllInterrupted(ctx context.Context) (int, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.mark_all_interrupted")
	defer span.End()

	span.SetAttributes(attribute.String("app.request.request_id", reqID))

	subs, err := uc.SubscriptionRepo.FindByStatus(ctx, constant.SubscriptionStatusActive)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list active subscriptions", err)

		return 0, err
	}

	marked := 0

	for _, sub := range subs {
		if err := uc.SubscriptionRepo.UpdateStatus(ctx, sub.Queue, constant.SubscriptionStatusInterrupted); err != nil {
			logger.Errorf("Error marking subscription of queue %s interrupted: %v", sub.Queue, err)

			continue
		}

		marked++
	}

	return marked, nil
}
