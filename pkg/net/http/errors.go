// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// WithError returns an error with the given status code and message.
func WithError(c *fiber.Ctx, err error) error {
	var (
		notFound     pkg.EntityNotFoundError
		validation   pkg.ValidationError
		knownFields  pkg.ValidationKnownFieldsError
		unknownField pkg.ValidationUnknownFieldsError
		unavailable  pkg.ServiceUnavailableError
		responseErr  pkg.ResponseError
		internal     pkg.InternalServerError
	)

	switch {
	case errors.As(err, &notFound):
		return NotFound(c, notFound.Code, notFound.Title, notFound.Message)
	case errors.As(err, &validation):
		return BadRequest(c, pkg.ValidationKnownFieldsError{
			Code:    validation.Code,
			Title:   validation.Title,
			Message: validation.Message,
			Fields:  nil,
		})
	case errors.As(err, &knownFields):
		return BadRequest(c, knownFields)
	case errors.As(err, &unknownField):
		return BadRequest(c, unknownField)
	case errors.As(err, &unavailable):
		return ServiceUnavailable(c, unavailable.Code, unavailable.Title, unavailable.Message)
	case errors.As(err, &responseErr):
		return JSONResponseError(c, responseErr)
	case errors.As(err, &internal):
		return InternalServerError(c, internal.Code, internal.Title, internal.Message)
	default:
		_ = errors.As(pkg.ValidateInternalError(err, ""), &internal)

		return InternalServerError(c, internal.Code, internal.Title, internal.Message)
	}
}

// HandleFiberError is the fiber ErrorHandler: framework errors keep their status, everything else goes through WithError.
func HandleFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JSONResponseError(c, pkg.ResponseError{
			Code:    fe.Code,
			Title:   fiberErrorTitle(fe.Code),
			Message: fe.Message,
		})
	}

	return WithError(c, err)
}

func fiberErrorTitle(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "Not Found"
	case fiber.StatusMethodNotAllowed:
		return "Method Not Allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "Request Entity Too Large"
	default:
		return "Request Error"
	}
}
