// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const (
	MongoUser     = "consumer"
	MongoPassword = "consumer"
	MongoDatabase = "consumer"
)

// MongoDBContainer wraps a MongoDB testcontainer with connection info.
type MongoDBContainer struct {
	*mongodb.MongoDBContainer
	ConnectionString string
	Host             string
	Port             string
}

// StartMongoDB creates and starts a MongoDB container.
func StartMongoDB(ctx context.Context, image string) (*MongoDBContainer, error) {
	if image == "" {
		image = "mongo:7"
	}

	container, err := mongodb.Run(ctx,
		image,
		mongodb.WithUsername(MongoUser),
		mongodb.WithPassword(MongoPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("start mongodb container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get mongodb host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get mongodb mapped port: %w", err)
	}

	connStr := fmt.Sprintf("mongodb://%s:%s@%s:%s/?authSource=admin",
		MongoUser, MongoPassword, host, mapped.Port())

	return &MongoDBContainer{
		MongoDBContainer: container,
		ConnectionString: connStr,
		Host:             host,
		Port:             mapped.Port(),
	}, nil
}
