// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"github.com/LerianStudio/rabbitmq-consumer-api/internal/services"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/net/http"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/gofiber/fiber/v2"
)

type ValuesHandler struct {
	Service *services.UseCase
}

// GetValues starts consuming the default queue.
//
//	@Summary		Consume the default queue
//	@Description	Declares the default queue and starts a consumer that logs every received message. Repeated calls reuse the running consumer.
//	@Tags			Values
//	@Success		200
//	@Failure		503	{object}	pkg.ServiceUnavailableError
//	@Router			/values [get]
func (vh *ValuesHandler) GetValues(c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_values")
	defer span.End()

	sub, err := vh.Service.RegisterDefaultSubscription(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to register default subscription", err)

		return http.WithError(c, err)
	}

	logger.Infof("Consumer %s waiting for messages on queue %s", sub.ConsumerTag, sub.Queue)

	return http.OKEmpty(c)
}
