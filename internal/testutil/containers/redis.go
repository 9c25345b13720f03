// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer wraps a Redis testcontainer with connection info.
type RedisContainer struct {
	*redis.RedisContainer
	Address string
}

// StartRedis creates and starts a Redis compatible container.
func StartRedis(ctx context.Context, image string) (*RedisContainer, error) {
	if image == "" {
		image = "valkey/valkey:8-alpine"
	}

	container, err := redis.Run(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get redis host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get redis mapped port: %w", err)
	}

	return &RedisContainer{
		RedisContainer: container,
		Address:        fmt.Sprintf("%s:%s", host, mappedPort.Port()),
	}, nil
}
