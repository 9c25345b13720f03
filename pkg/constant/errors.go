// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import (
	"errors"
)

// List of errors that can be returned.
// Every business error carries a CSM-XXXX code.
var (
	ErrMissingRequiredFields        = errors.New("CSM-0001")
	ErrInvalidQueueName             = errors.New("CSM-0002")
	ErrReservedQueueName            = errors.New("CSM-0003")
	ErrEntityNotFound               = errors.New("CSM-0004")
	ErrBrokerUnavailable            = errors.New("CSM-0005")
	ErrInvalidQueryParameter        = errors.New("CSM-0006")
	ErrBadRequest                   = errors.New("CSM-0007")
	ErrInternalServer               = errors.New("CSM-0008")
	ErrUnexpectedFieldsInTheRequest = errors.New("CSM-0009")
	ErrMissingFieldsInRequest       = errors.New("CSM-0010")
	ErrPaginationLimitExceeded      = errors.New("CSM-0011")
	ErrHistoryUnavailable           = errors.New("CSM-0012")
)

// ErrConnectionClosed is returned when the broker connection is not open.
var ErrConnectionClosed = errors.New("rabbitmq connection is closed")
