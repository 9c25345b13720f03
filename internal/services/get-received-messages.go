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

// GetReceivedMessages returns up to limit of the latest messages received on queue, newest first.
func (uc *UseCase) GetReceivedMessages(ctx context.Context, queue string, limit int) ([]model.ReceivedMessage, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_received_messages")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", queue),
		attribute.Int("app.request.limit", limit),
	)

	if _, err := uc.SubscriptionRepo.FindByQueue(ctx, queue); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to find subscription", err)

		return nil, err
	}

	result, err := uc.BreakerManager.Execute(constant.BreakerHistory, func() (any, error) {
		return uc.HistoryRepo.List(ctx, queue, limit)
	})
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to read message history", err)

		logger.Errorf("Error reading history of queue %s: %v", queue, err)

		return nil, pkg.ValidateBusinessError(constant.ErrHistoryUnavailable, "ReceivedMessage")
	}

	messages, _ := result.([]model.ReceivedMessage)
	if messages == nil {
		messages = []model.ReceivedMessage{}
	}

	return messages, nil
}
