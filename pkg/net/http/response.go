// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"

	commonsHTTP "github.com/LerianStudio/lib-commons/v3/commons/net/http"
	"github.com/gofiber/fiber/v2"
)

// OK sends an HTTP 200 response with s as body.
func OK(c *fiber.Ctx, s any) error {
	return commonsHTTP.OK(c, s)
}

// OKEmpty sends an HTTP 200 response without a body.
func OKEmpty(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

// Created sends an HTTP 201 response with s as body.
func Created(c *fiber.Ctx, s any) error {
	return commonsHTTP.Created(c, s)
}

// NoContent sends an HTTP 204 response.
func NoContent(c *fiber.Ctx) error {
	return commonsHTTP.NoContent(c)
}

// BadRequest sends an HTTP 400 Bad Request response with a custom body.
func BadRequest(c *fiber.Ctx, s any) error {
	return commonsHTTP.BadRequest(c, s)
}

// NotFound sends an HTTP 404 Not Found response with a custom code, title and message.
func NotFound(c *fiber.Ctx, code, title, message string) error {
	return commonsHTTP.NotFound(c, code, title, message)
}

// ServiceUnavailable sends an HTTP 503 response with a custom code, title and message.
// lib-commons has no 503 helper, so the body mirrors its other error responses.
func ServiceUnavailable(c *fiber.Ctx, code, title, message string) error {
	return commonsHTTP.JSONResponse(c, fiber.StatusServiceUnavailable, fiber.Map{
		"code":    code,
		"title":   title,
		"message": message,
	})
}

// InternalServerError sends an HTTP 500 Internal Server Error response.
func InternalServerError(c *fiber.Ctx, code, title, message string) error {
	return commonsHTTP.InternalServerError(c, code, title, message)
}

// JSONResponseError sends a JSON formatted error response with a custom error struct.
// pkg.ResponseError carries the HTTP status as an int, unlike commons.Response.
func JSONResponseError(c *fiber.Ctx, err pkg.ResponseError) error {
	return c.Status(err.Code).JSON(err)
}
