// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// HandleMessage logs a received message, keeps it in the history and counts it.
// The delivery is already acknowledged, so history failures are only logged.
func (uc *UseCase) HandleMessage(ctx context.Context, msg model.ReceivedMessage) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.handle_message")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", msg.Queue),
		attribute.String("app.request.consumer_tag", msg.ConsumerTag),
	)

	logger.Info(uc.Renderer.Render(msg))

	uc.countReceived(ctx, msg.Queue)

	if uc.HistoryRepo == nil {
		return nil
	}

	if _, err := uc.BreakerManager.Execute(constant.BreakerHistory, func() (any, error) {
		return nil, uc.HistoryRepo.Append(ctx, msg)
	}); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to append message to history", err)

		logger.Warnf("Message from queue %s not kept in history: %v", msg.Queue, err)
	}

	return nil
}
