// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

const (
	RabbitUser     = "consumer-user"
	RabbitPassword = "consumer-pass"
)

// RabbitMQContainer wraps a RabbitMQ testcontainer with connection info.
type RabbitMQContainer struct {
	*rabbitmq.RabbitMQContainer
	AmqpURL  string
	Host     string
	AmqpPort string
	MgmtPort string
}

// StartRabbitMQ creates and starts a RabbitMQ container with the management plugin.
// Extra customizers, such as a network attachment, are applied after the defaults.
func StartRabbitMQ(ctx context.Context, image string, opts ...testcontainers.ContainerCustomizer) (*RabbitMQContainer, error) {
	if image == "" {
		image = "rabbitmq:4.0-management-alpine"
	}

	customizers := append([]testcontainers.ContainerCustomizer{
		rabbitmq.WithAdminUsername(RabbitUser),
		rabbitmq.WithAdminPassword(RabbitPassword),
	}, opts...)

	container, err := rabbitmq.Run(ctx, image, customizers...)
	if err != nil {
		return nil, fmt.Errorf("start rabbitmq container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get rabbitmq host: %w", err)
	}

	amqpMapped, err := container.MappedPort(ctx, "5672/tcp")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get rabbitmq amqp mapped port: %w", err)
	}

	mgmtMapped, err := container.MappedPort(ctx, "15672/tcp")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get rabbitmq mgmt mapped port: %w", err)
	}

	return &RabbitMQContainer{
		RabbitMQContainer: container,
		AmqpURL:           fmt.Sprintf("amqp://%s:%s@%s:%s/", RabbitUser, RabbitPassword, host, amqpMapped.Port()),
		Host:              host,
		AmqpPort:          amqpMapped.Port(),
		MgmtPort:          mgmtMapped.Port(),
	}, nil
}

// HealthCheckURL is the management API base URL.
func (r *RabbitMQContainer) HealthCheckURL() string {
	return fmt.Sprintf("http://%s:%s", r.Host, r.MgmtPort)
}

// Publish sends body to queue through the default exchange.
func (r *RabbitMQContainer) Publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(r.AmqpURL)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        body,
	}); err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}

	return nil
}

// InspectQueue returns the queue state, failing if it does not exist.
func (r *RabbitMQContainer) InspectQueue(queue string) (amqp.Queue, error) {
	conn, err := amqp.Dial(r.AmqpURL)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclarePassive(queue, false, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("inspect queue %s: %w", queue, err)
	}

	return q, nil
}
