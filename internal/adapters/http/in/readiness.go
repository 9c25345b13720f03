// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"context"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/rabbitmq"

	libMongo "github.com/LerianStudio/lib-commons/v3/commons/mongo"
	commonsHttp "github.com/LerianStudio/lib-commons/v3/commons/net/http"
	libRedis "github.com/LerianStudio/lib-commons/v3/commons/redis"
	"github.com/gofiber/fiber/v2"
)

const (
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// ReadinessDeps holds the dependency connections needed for the /ready endpoint.
type ReadinessDeps struct {
	RabbitMQConnection *rabbitmq.Connection
	MongoConnection    *libMongo.MongoConnection
	RedisConnection    *libRedis.RedisConnection
}

// dependencyResult represents the health status of a single dependency in the readiness check.
type dependencyResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// readinessHandler checks every dependency, each within ReadinessCheckTimeout.
// Returns 200 if all are healthy, 503 otherwise.
func readinessHandler(deps *ReadinessDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps == nil {
			deps = &ReadinessDeps{}
		}

		results := map[string]*dependencyResult{
			"rabbitmq": checkRabbitMQ(c.UserContext(), deps.RabbitMQConnection),
			"mongodb":  checkMongoDB(c.UserContext(), deps.MongoConnection),
			"redis":    checkRedis(c.UserContext(), deps.RedisConnection),
		}

		httpStatus := fiber.StatusOK
		overallStatus := statusReady

		for _, result := range results {
			if result.Status != statusReady {
				httpStatus = fiber.StatusServiceUnavailable
				overallStatus = statusNotReady

				break
			}
		}

		return commonsHttp.JSONResponse(c, httpStatus, fiber.Map{
			"status":       overallStatus,
			"dependencies": results,
		})
	}
}

// checkRabbitMQ verifies the broker connection is open and, when configured, healthy.
func checkRabbitMQ(ctx context.Context, conn *rabbitmq.Connection) *dependencyResult {
	if conn == nil {
		return &dependencyResult{Status: statusNotReady, Message: "connection not configured"}
	}

	if !conn.IsAlive() {
		return &dependencyResult{Status: statusNotReady, Message: "connection is closed"}
	}

	ctx, cancel := context.WithTimeout(ctx, constant.ReadinessCheckTimeout)
	defer cancel()

	if !conn.HealthCheck(ctx) {
		return &dependencyResult{Status: statusNotReady, Message: "health check failed"}
	}

	return &dependencyResult{Status: statusReady}
}

// checkMongoDB pings the MongoDB connection with a timeout.
func checkMongoDB(ctx context.Context, conn *libMongo.MongoConnection) *dependencyResult {
	if conn == nil {
		return &dependencyResult{Status: statusNotReady, Message: "connection not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, constant.ReadinessCheckTimeout)
	defer cancel()

	client, err := conn.GetDB(ctx)
	if err != nil {
		return &dependencyResult{Status: statusNotReady, Message: "failed to get connection"}
	}

	if err = client.Ping(ctx, nil); err != nil {
		return &dependencyResult{Status: statusNotReady, Message: "ping failed"}
	}

	return &dependencyResult{Status: statusReady}
}

// checkRedis pings the Redis/Valkey connection with a timeout.
func checkRedis(ctx context.Context, conn *libRedis.RedisConnection) *dependencyResult {
	if conn == nil {
		return &dependencyResult{Status: statusNotReady, Message: "connection not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, constant.ReadinessCheckTimeout)
	defer cancel()

	client, err := conn.GetClient(ctx)
	if err != nil {
		return &dependencyResult{Status: statusNotReady, Message: "failed to get client"}
	}

	if _, err = client.Ping(ctx).Result(); err != nil {
		return &dependencyResult{Status: statusNotReady, Message: "ping failed"}
	}

	return &dependencyResult{Status: statusReady}
}
