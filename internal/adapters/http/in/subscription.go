// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"github.com/LerianStudio/rabbitmq-consumer-api/internal/services"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/net/http"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
)

type SubscriptionHandler struct {
	Service *services.UseCase
}

// CreateSubscription is a method that registers a consumer on a queue.
//
//	@Summary		Create a Subscription
//	@Description	Declares the queue and starts consuming it. An existing subscription is returned as is.
//	@Tags			Subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			subscription	body		model.CreateSubscriptionInput	true	"Subscription Input"
//	@Success		201				{object}	model.Subscription
//	@Router			/v1/subscriptions [post]
func (sh *SubscriptionHandler) CreateSubscription(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.create_subscription")
	defer span.End()

	payload := p.(*model.CreateSubscriptionInput)
	logger.Infof("Request to create a subscription on queue %s", payload.Queue)

	if err := libOpentelemetry.SetSpanAttributesFromStruct(&span, "app.request.payload", payload); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to convert payload to JSON string", err)
	}

	sub, err := sh.Service.RegisterSubscription(ctx, payload.Queue)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to register subscription", err)

		return http.WithError(c, err)
	}

	logger.Infof("Successfully created subscription on queue %s", sub.Queue)

	return http.Created(c, sub)
}

// GetAllSubscriptions is a method that lists every subscription.
//
//	@Summary		List Subscriptions
//	@Tags			Subscriptions
//	@Produce		json
//	@Success		200	{array}	model.Subscription
//	@Router			/v1/subscriptions [get]
func (sh *SubscriptionHandler) GetAllSubscriptions(c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_all_subscriptions")
	defer span.End()

	subs, err := sh.Service.GetAllSubscriptions(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list subscriptions", err)

		return http.WithError(c, err)
	}

	if subs == nil {
		subs = []*model.Subscription{}
	}

	return http.OK(c, subs)
}

// GetSubscriptionByQueue is a method that retrieves the subscription of a queue.
//
//	@Summary		Get a Subscription
//	@Tags			Subscriptions
//	@Produce		json
//	@Param			queue	path		string	true	"Queue name"
//	@Success		200		{object}	model.Subscription
//	@Failure		404		{object}	pkg.EntityNotFoundError
//	@Router			/v1/subscriptions/{queue} [get]
func (sh *SubscriptionHandler) GetSubscriptionByQueue(c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_subscription_by_queue")
	defer span.End()

	queue := c.Locals(queueParam).(string)
	span.SetAttributes(attribute.String("app.request.queue", queue))

	sub, err := sh.Service.GetSubscriptionByQueue(ctx, queue)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get subscription", err)

		return http.WithError(c, err)
	}

	return http.OK(c, sub)
}

// DeleteSubscriptionByQueue is a method that stops consuming a queue.
//
//	@Summary		Delete a Subscription
//	@Description	Cancels the consumer and closes its channel. The queue itself is kept.
//	@Tags			Subscriptions
//	@Param			queue	path	string	true	"Queue name"
//	@Success		204
//	@Failure		404	{object}	pkg.EntityNotFoundError
//	@Router			/v1/subscriptions/{queue} [delete]
func (sh *SubscriptionHandler) DeleteSubscriptionByQueue(c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.delete_subscription_by_queue")
	defer span.End()

	queue := c.Locals(queueParam).(string)
	span.SetAttributes(attribute.String("app.request.queue", queue))

	if err := sh.Service.CancelSubscription(ctx, queue); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to cancel subscription", err)

		return http.WithError(c, err)
	}

	logger.Infof("Successfully deleted subscription on queue %s", queue)

	return http.NoContent(c)
}

// GetReceivedMessages is a method that lists the latest messages received on a queue.
//
//	@Summary		List received messages
//	@Tags			Subscriptions
//	@Produce		json
//	@Param			queue	path	string	true	"Queue name"
//	@Param			limit	query	int		false	"Limit"	default(10)
//	@Success		200		{array}	model.ReceivedMessage
//	@Router			/v1/subscriptions/{queue}/messages [get]
func (sh *SubscriptionHandler) GetReceivedMessages(c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_received_messages")
	defer span.End()

	queue := c.Locals(queueParam).(string)
	span.SetAttributes(attribute.String("app.request.queue", queue))

	headerParams, err := http.ValidateParameters(c.Queries())
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to validate query parameters", err)

		return http.WithError(c, err)
	}

	messages, err := sh.Service.GetReceivedMessages(ctx, queue, headerParams.Limit)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get received messages", err)

		return http.WithError(c, err)
	}

	return http.OK(c, messages)
}
