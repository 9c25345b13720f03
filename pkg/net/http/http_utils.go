// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"strconv"
	"strings"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
)

// QueryHeader entity from query parameter from get apis
type QueryHeader struct {
	Limit int
}

// ValidateParameters validate and return struct of default parameters
func ValidateParameters(params map[string]string) (*QueryHeader, error) {
	limit := constant.DefaultPaginationLimit

	for key, value := range params {
		if strings.EqualFold(key, "limit") {
			parsed, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || parsed <= 0 {
				return nil, pkg.ValidateBusinessError(constant.ErrInvalidQueryParameter, "", key)
			}

			limit = parsed
		}
	}

	if limit > constant.DefaultMaxPaginationLimit {
		return nil, pkg.ValidateBusinessError(constant.ErrPaginationLimitExceeded, "", constant.DefaultMaxPaginationLimit)
	}

	return &QueryHeader{Limit: limit}, nil
}
