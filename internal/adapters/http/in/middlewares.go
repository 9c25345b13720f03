// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
)

// queueParam is the path parameter, and the Locals key, holding the queue name.
const queueParam = "queue"

// SecurityHeaders sets standard HTTP security headers on every response.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "0")

		return c.Next()
	}
}

// RecoverMiddleware keeps a panicking handler from crashing the process.
func RecoverMiddleware() fiber.Handler {
	return recover.New()
}

// ParseQueuePathParam validates the queue path parameter and stores it in c.Locals("queue").
func ParseQueuePathParam(c *fiber.Ctx) error {
	queue := utils.CopyString(c.Params(queueParam))

	if err := model.ValidateQueueName(queue); err != nil {
		return http.WithError(c, err)
	}

	c.Locals(queueParam, queue)

	return c.Next()
}
