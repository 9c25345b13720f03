// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package subscription

import (
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	"github.com/google/uuid"
)

// SubscriptionMongoDBModel represents the MongoDB model for a subscription
type SubscriptionMongoDBModel struct {
	ID          string    `bson:"_id"`
	Queue       string    `bson:"queue"`
	ConsumerTag string    `bson:"consumer_tag"`
	AutoAck     bool      `bson:"auto_ack"`
	Durable     bool      `bson:"durable"`
	Exclusive   bool      `bson:"exclusive"`
	AutoDelete  bool      `bson:"auto_delete"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// FromEntity converts a Subscription to its MongoDB model
func (sm *SubscriptionMongoDBModel) FromEntity(s *model.Subscription) {
	sm.ID = s.ID.String()
	sm.Queue = s.Queue
	sm.ConsumerTag = s.ConsumerTag
	sm.AutoAck = s.AutoAck
	sm.Durable = s.Durable
	sm.Exclusive = s.Exclusive
	sm.AutoDelete = s.AutoDelete
	sm.Status = s.Status
	sm.CreatedAt = s.CreatedAt
	sm.UpdatedAt = s.UpdatedAt
}

// ToEntity converts SubscriptionMongoDBModel to Subscription
func (sm *SubscriptionMongoDBModel) ToEntity() *model.Subscription {
	id, _ := uuid.Parse(sm.ID)

	return &model.Subscription{
		ID:          id,
		Queue:       sm.Queue,
		ConsumerTag: sm.ConsumerTag,
		AutoAck:     sm.AutoAck,
		Durable:     sm.Durable,
		Exclusive:   sm.Exclusive,
		AutoDelete:  sm.AutoDelete,
		Status:      sm.Status,
		CreatedAt:   sm.CreatedAt,
		UpdatedAt:   sm.UpdatedAt,
	}
}
