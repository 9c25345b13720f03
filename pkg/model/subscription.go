// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/google/uuid"
)

// CreateSubscriptionInput is the payload to register a consumer on a queue.
//
// @Description CreateSubscriptionInput is the input payload to create a subscription.
type CreateSubscriptionInput struct {
	Queue string `json:"queue" validate:"required,max=255" example:"hello"`
} // @name CreateSubscriptionInput

// Subscription is a consumer registered on a queue. The queue name is its identity.
//
// @Description Subscription represents a queue consumer owned by this service.
type Subscription struct {
	ID            uuid.UUID `json:"id" example:"00000000-0000-0000-0000-000000000000"`
	Queue         string    `json:"queue" example:"hello"`
	ConsumerTag   string    `json:"consumerTag"`
	AutoAck       bool      `json:"autoAck"`
	Durable       bool      `json:"durable"`
	Exclusive     bool      `json:"exclusive"`
	AutoDelete    bool      `json:"autoDelete"`
	Status        string    `json:"status" example:"active"`
	ReceivedCount int64     `json:"receivedCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
} // @name Subscription

// NewSubscription builds an active subscription for queue with the fixed declaration attributes.
func NewSubscription(queue, consumerTag string) *Subscription {
	now := time.Now().UTC()

	return &Subscription{
		ID:          libCommons.GenerateUUIDv7(),
		Queue:       queue,
		ConsumerTag: consumerTag,
		AutoAck:     constant.ConsumeAutoAck,
		Durable:     constant.QueueDurable,
		Exclusive:   constant.QueueExclusive,
		AutoDelete:  constant.QueueAutoDelete,
		Status:      constant.SubscriptionStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ReceivedMessage is a delivery as kept in the message history.
//
// @Description ReceivedMessage is a message consumed from a queue.
type ReceivedMessage struct {
	Queue       string    `json:"queue"`
	Body        string    `json:"body"`
	MessageID   string    `json:"messageId,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	RoutingKey  string    `json:"routingKey"`
	Exchange    string    `json:"exchange"`
	ConsumerTag string    `json:"consumerTag"`
	DeliveryTag uint64    `json:"deliveryTag"`
	Redelivered bool      `json:"redelivered"`
	RequestID   string    `json:"requestId,omitempty"`
	ReceivedAt  time.Time `json:"receivedAt"`
} // @name ReceivedMessage

// ValidateQueueName checks the rules the broker enforces on queue names we declare.
// A '/' is refused as well: the name travels as a single path segment of the API.
func ValidateQueueName(queue string) error {
	if strings.TrimSpace(queue) == "" || len(queue) > constant.MaxQueueNameLength || !utf8.ValidString(queue) ||
		strings.Contains(queue, "/") {
		return pkg.ValidateBusinessError(constant.ErrInvalidQueueName, "Subscription", queue, constant.MaxQueueNameLength)
	}

	if strings.HasPrefix(queue, constant.ReservedQueuePrefix) {
		return pkg.ValidateBusinessError(constant.ErrReservedQueueName, "Subscription", queue)
	}

	return nil
}

// DecodeBody turns a delivery body into text. Every byte that is not part of a
// valid UTF-8 sequence becomes its own U+FFFD.
func DecodeBody(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}

	var sb strings.Builder

	sb.Grow(len(body))

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		sb.WriteRune(r)

		body = body[size:]
	}

	return sb.String()
}
