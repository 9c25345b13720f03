// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libMongo "github.com/LerianStudio/lib-commons/v3/commons/mongo"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

// Repository provides an interface for operations related to the subscriptions collection in MongoDB.
//
//go:generate mockgen --destination=subscription.mongodb.mock.go --package=subscription --copyright_file=../../../COPYRIGHT . Repository
type Repository interface {
	Upsert(ctx context.Context, record *model.Subscription) (*model.Subscription, error)
	FindByQueue(ctx context.Context, queue string) (*model.Subscription, error)
	FindAll(ctx context.Context) ([]*model.Subscription, error)
	FindByStatus(ctx context.Context, statuses ...string) ([]*model.Subscription, error)
	UpdateStatus(ctx context.Context, queue, status string) error
}

// SubscriptionMongoDBRepository is a MongoDB-specific implementation of the subscription Repository.
type SubscriptionMongoDBRepository struct {
	connection *libMongo.MongoConnection
	Database   string
}

// Compile-time interface satisfaction check.
var _ Repository = (*SubscriptionMongoDBRepository)(nil)

// NewSubscriptionMongoDBRepository returns a new instance of SubscriptionMongoDBRepository using the given MongoDB connection.
func NewSubscriptionMongoDBRepository(mc *libMongo.MongoConnection) (*SubscriptionMongoDBRepository, error) {
	r := &SubscriptionMongoDBRepository{
		connection: mc,
		Database:   mc.Database,
	}
	if _, err := r.connection.GetDB(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb for subscriptions: %w", err)
	}

	return r, nil
}

func (sr *SubscriptionMongoDBRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := sr.connection.GetDB(ctx)
	if err != nil {
		return nil, err
	}

	return db.Database(strings.ToLower(sr.Database)).Collection(constant.MongoCollectionSubscription), nil
}

// Upsert creates the registration of record.Queue or refreshes it. ID and CreatedAt of an existing registration are kept.
func (sr *SubscriptionMongoDBRepository) Upsert(ctx context.Context, record *model.Subscription) (*model.Subscription, error) {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "repository.subscription.upsert")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", record.Queue),
		attribute.String("app.request.status", record.Status),
	)

	coll, err := sr.collection(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return nil, err
	}

	doc := &SubscriptionMongoDBModel{}
	doc.FromEntity(record)

	update := bson.M{
		"$set": bson.M{
			"consumer_tag": doc.ConsumerTag,
			"auto_ack":     doc.AutoAck,
			"durable":      doc.Durable,
			"exclusive":    doc.Exclusive,
			"auto_delete":  doc.AutoDelete,
			"status":       doc.Status,
			"updated_at":   doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        doc.ID,
			"created_at": doc.CreatedAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result SubscriptionMongoDBModel

	if err := coll.FindOneAndUpdate(ctx, bson.M{"queue": record.Queue}, update, opts).Decode(&result); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to upsert subscription", err)

		return nil, fmt.Errorf("upsert subscription %s: %w", record.Queue, err)
	}

	return result.ToEntity(), nil
}

// FindByQueue retrieves the registration of queue.
func (sr *SubscriptionMongoDBRepository) FindByQueue(ctx context.Context, queue string) (*model.Subscription, error) {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "repository.subscription.find_by_queue")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", queue),
	)

	coll, err := sr.collection(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return nil, err
	}

	var record SubscriptionMongoDBModel

	if err := coll.FindOne(ctx, bson.M{"queue": queue}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			libOpentelemetry.HandleSpanBusinessErrorEvent(&span, "Subscription not found", err)

			return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, "Subscription", queue)
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to find subscription", err)

		return nil, fmt.Errorf("find subscription %s: %w", queue, err)
	}

	return record.ToEntity(), nil
}

// FindAll retrieves every registration ordered by creation.
func (sr *SubscriptionMongoDBRepository) FindAll(ctx context.Context) ([]*model.Subscription, error) {
	return sr.find(ctx, "repository.subscription.find_all", bson.M{})
}

// FindByStatus retrieves the registrations in any of statuses.
func (sr *SubscriptionMongoDBRepository) FindByStatus(ctx context.Context, statuses ...string) ([]*model.Subscription, error) {
	return sr.find(ctx, "repository.subscription.find_by_status", bson.M{"status": bson.M{"$in": statuses}})
}

func (sr *SubscriptionMongoDBRepository) find(ctx context.Context, spanName string, filter bson.M) ([]*model.Subscription, error) {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(attribute.String("app.request.request_id", reqID))

	coll, err := sr.collection(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to find subscriptions", err)

		return nil, fmt.Errorf("find subscriptions: %w", err)
	}

	defer cursor.Close(ctx)

	var records []SubscriptionMongoDBModel
	if err := cursor.All(ctx, &records); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to decode subscriptions", err)

		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}

	subscriptions := make([]*model.Subscription, 0, len(records))
	for i := range records {
		subscriptions = append(subscriptions, records[i].ToEntity())
	}

	return subscriptions, nil
}

// UpdateStatus sets the status of the registration of queue.
func (sr *SubscriptionMongoDBRepository) UpdateStatus(ctx context.Context, queue, status string) error {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "repository.subscription.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.queue", queue),
		attribute.String("app.request.status", status),
	)

	coll, err := sr.collection(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return err
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := coll.UpdateOne(ctx, bson.M{"queue": queue}, update)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update subscription status", err)

		return fmt.Errorf("update subscription %s: %w", queue, err)
	}

	if result.MatchedCount == 0 {
		libOpentelemetry.HandleSpanBusinessErrorEvent(&span, "No subscription found for queue", constant.ErrEntityNotFound)

		return pkg.ValidateBusinessError(constant.ErrEntityNotFound, "Subscription", queue)
	}

	return nil
}
