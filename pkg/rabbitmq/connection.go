// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libRabbitmq "github.com/LerianStudio/lib-commons/v3/commons/rabbitmq"
	"github.com/rabbitmq/amqp091-go"
)

// Connection owns the single broker connection of the process. Dialing and the
// management API health check are done by the lib-commons RabbitMQConnection;
// this type adds bounded startup retries and hands out one channel per consumer.
type Connection struct {
	conn       *libRabbitmq.RabbitMQConnection
	maxRetries int
	logger     log.Logger

	mu     sync.RWMutex
	ensure func(ctx context.Context) error
}

// NewConnection wraps conn. A non-positive maxRetries uses ConnectMaxRetries.
func NewConnection(conn *libRabbitmq.RabbitMQConnection, maxRetries int) *Connection {
	if maxRetries <= 0 {
		maxRetries = constant.ConnectMaxRetries
	}

	logger := conn.Logger
	if logger == nil {
		logger = &log.NoneLogger{}
		conn.Logger = logger
	}

	return &Connection{
		conn:       conn,
		maxRetries: maxRetries,
		logger:     logger,
		ensure:     conn.EnsureChannelWithContext,
	}
}

// Connect dials the broker with bounded retries and full jitter backoff.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	backoff := constant.ConnectInitialBackoff

	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		c.logger.Infof("Connecting to rabbitmq (attempt %d/%d)", attempt, c.maxRetries)

		err := c.ensure(ctx)
		if err == nil {
			c.logger.Info("Connected to rabbitmq")

			return nil
		}

		lastErr = err

		c.logger.Warnf("Failed to connect to rabbitmq: %v", err)

		if attempt == c.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rabbitmq connect interrupted: %w", ctx.Err())
		case <-time.After(pkg.FullJitter(backoff)):
		}

		backoff = pkg.NextBackoff(backoff)
	}

	return fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", c.maxRetries, lastErr)
}

// OpenChannel implements ChannelOpener. It fails with ErrConnectionClosed once the connection is gone.
//
//nolint:ireturn
func (c *Connection) OpenChannel() (AMQPChannel, error) {
	c.mu.RLock()
	conn := c.conn.Connection
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return nil, constant.ErrConnectionClosed
	}

	ch, err := conn.Channel()
	if err != nil {
		if errors.Is(err, amqp091.ErrClosed) {
			return nil, constant.ErrConnectionClosed
		}

		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	return ch, nil
}

// IsAlive reports whether the connection is open.
func (c *Connection) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.conn.Connection != nil && !c.conn.Connection.IsClosed()
}

// HealthCheck asks the management API for broker alarms, giving up when ctx is done.
// Without a health URL only IsAlive is checked.
func (c *Connection) HealthCheck(ctx context.Context) bool {
	if !c.IsAlive() {
		return false
	}

	if strings.TrimSpace(c.conn.HealthCheckURL) == "" {
		return true
	}

	result := make(chan bool, 1)

	pkg.GoNamed(c.logger, "rabbitmq health check", func() {
		result <- c.conn.HealthCheck()
	})

	select {
	case healthy := <-result:
		return healthy
	case <-ctx.Done():
		c.logger.Warnf("Rabbitmq health check timed out: %v", ctx.Err())

		return false
	}
}

// Close closes the bootstrap channel and the connection. Closing twice is not an error.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.conn.Channel != nil && !c.conn.Channel.IsClosed() {
		if err := c.conn.Channel.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close rabbitmq channel: %w", err))
		}
	}

	if c.conn.Connection != nil && !c.conn.Connection.IsClosed() {
		if err := c.conn.Connection.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close rabbitmq connection: %w", err))
		}
	}

	c.conn.Connected = false

	return errors.Join(errs...)
}
