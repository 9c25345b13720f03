// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package rabbitmq

import (
	"github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the part of *amqp091.Channel a subscriber needs.
//
//go:generate mockgen --destination=channel.mock.go --package=rabbitmq --copyright_file=../../COPYRIGHT . AMQPChannel,ChannelOpener
type AMQPChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Cancel(consumer string, noWait bool) error
	NotifyClose(receiver chan *amqp091.Error) chan *amqp091.Error
	Close() error
}

// ChannelOpener hands out channels from a shared connection.
type ChannelOpener interface {
	OpenChannel() (AMQPChannel, error)
	IsAlive() bool
}
