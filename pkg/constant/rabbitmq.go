// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

// DefaultQueue is the queue registered by the values endpoint.
const DefaultQueue = "hello"

// Fixed queue declaration attributes. Every queue this service declares uses them.
const (
	QueueDurable    = false
	QueueExclusive  = false
	QueueAutoDelete = false
	QueueNoWait     = false
)

// Consume attributes. Messages are acknowledged automatically on dispatch.
const (
	ConsumeAutoAck   = true
	ConsumeExclusive = false
	ConsumeNoLocal   = false
	ConsumeNoWait    = false
)

// ReservedQueuePrefix is reserved by the broker for its own queues.
const ReservedQueuePrefix = "amq."

// MaxQueueNameLength is the AMQP 0-9-1 short string limit.
const MaxQueueNameLength = 255

// DefaultMessageTemplate renders the log line of every received message.
const DefaultMessageTemplate = " [x] Received {{ message }}"
