// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
)

// markInterruptedTimeout bounds the onDown callback.
const markInterruptedTimeout = 30 * time.Second

// tickerFactory creates a channel that receives ticks and a stop function.
// Overridable in tests for deterministic behavior.
var tickerFactory = newRealTicker

// newRealTicker returns a channel that ticks at the given interval and a stop func.
func newRealTicker(interval time.Duration) (<-chan time.Time, func()) {
	if interval <= 0 {
		interval = constant.ConnectionMonitorInterval
	}

	t := time.NewTicker(interval)

	return t.C, t.Stop
}

// connectionChecker reports whether the broker connection is usable.
type connectionChecker interface {
	IsAlive() bool
}

// RabbitMQMonitor performs periodic background checks on the RabbitMQ connection.
// When the connection goes from alive to dead it calls onDown once. It never redials:
// consumers stay down until the process restarts.
type RabbitMQMonitor struct {
	conn     connectionChecker
	interval time.Duration
	onDown   func(ctx context.Context)
	logger   log.Logger
	stop     chan struct{}
	done     chan struct{}
	alive    bool
	started  bool
	stopOnce sync.Once
}

// NewRabbitMQMonitor creates a new monitor for the given RabbitMQ connection.
func NewRabbitMQMonitor(conn connectionChecker, interval time.Duration, onDown func(ctx context.Context), logger log.Logger) *RabbitMQMonitor {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &RabbitMQMonitor{
		conn:     conn,
		interval: interval,
		onDown:   onDown,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		alive:    true,
	}
}

// Start launches the background monitor goroutine.
func (m *RabbitMQMonitor) Start() {
	m.started = true

	pkg.GoNamed(m.logger, "rabbitmq connection monitor", m.monitorLoop)
}

// Stop signals the monitor to shut down and waits for it to finish.
// It is safe to call more than once, and before Start.
func (m *RabbitMQMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })

	if m.started {
		<-m.done
	}
}

func (m *RabbitMQMonitor) monitorLoop() {
	defer close(m.done)

	tickCh, stopTicker := tickerFactory(m.interval)
	defer stopTicker()

	for {
		select {
		case <-m.stop:
			m.logger.Info("RabbitMQ connection monitor stopped")

			return
		case <-tickCh:
			m.check()
		}
	}
}

// isConnectionAlive returns true if the RabbitMQ connection is in a healthy state.
func (m *RabbitMQMonitor) isConnectionAlive() bool {
	if m.conn == nil {
		return false
	}

	return m.conn.IsAlive()
}

// check compares the current state with the last one seen and fires onDown on loss.
func (m *RabbitMQMonitor) check() {
	alive := m.isConnectionAlive()

	defer func() { m.alive = alive }()

	if alive || !m.alive {
		return
	}

	m.logger.Error("RabbitMQ connection lost, consumers will not be restarted until the service restarts")

	if m.onDown == nil {
		return
	}

	ctx, cancel := context.WithTimeout(libCommons.ContextWithLogger(context.Background(), m.logger), markInterruptedTimeout)
	defer cancel()

	m.onDown(ctx)
}
