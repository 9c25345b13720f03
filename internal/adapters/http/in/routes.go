// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/net/http"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	commonsHttp "github.com/LerianStudio/lib-commons/v3/commons/net/http"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/gofiber/fiber/v2"
)

// NewRoutes creates a new fiber router with the specified handlers and middleware.
// Route matching is case-insensitive, so /Values reaches the values handler.
func NewRoutes(lg log.Logger, tl *libOpentelemetry.Telemetry, cors CORSConfig, valuesHandler *ValuesHandler, subscriptionHandler *SubscriptionHandler, deps *ReadinessDeps) *fiber.App {
	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		CaseSensitive:         false,
		UnescapePath:          true,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return http.HandleFiberError(ctx, err)
		},
	})

	tlMid := commonsHttp.NewTelemetryMiddleware(tl)

	f.Use(RecoverMiddleware())
	f.Use(tlMid.WithTelemetry(tl, "/health", "/ready", "/version"))
	f.Use(SecurityHeaders())
	f.Use(CORSMiddleware(cors))
	f.Use(commonsHttp.WithHTTPLogging(commonsHttp.WithCustomLogger(lg)))

	// Values route
	f.Get("/values", valuesHandler.GetValues)

	// Subscription routes
	f.Post("/v1/subscriptions", http.WithBody(new(model.CreateSubscriptionInput), subscriptionHandler.CreateSubscription))
	f.Get("/v1/subscriptions", subscriptionHandler.GetAllSubscriptions)
	f.Get("/v1/subscriptions/:queue", ParseQueuePathParam, subscriptionHandler.GetSubscriptionByQueue)
	f.Delete("/v1/subscriptions/:queue", ParseQueuePathParam, subscriptionHandler.DeleteSubscriptionByQueue)
	f.Get("/v1/subscriptions/:queue/messages", ParseQueuePathParam, subscriptionHandler.GetReceivedMessages)

	// Health
	f.Get("/health", commonsHttp.Ping)

	// Readiness - checks all dependency connections
	f.Get("/ready", readinessHandler(deps))

	// Version
	f.Get("/version", commonsHttp.Version)

	// End tracing spans middleware
	f.Use(tlMid.EndTracingSpans)

	return f
}
