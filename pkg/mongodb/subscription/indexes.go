// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package subscription

import (
	"context"
	"strings"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

// SubscriptionIndexes are the indexes of the subscriptions collection.
func SubscriptionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "queue", Value: 1},
			},
			Options: options.Index().
				SetName("idx_subscription_queue_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().
				SetName("idx_subscription_status_created"),
		},
	}
}

// EnsureIndexes creates all indexes for the subscriptions collection.
func (sr *SubscriptionMongoDBRepository) EnsureIndexes(ctx context.Context) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "repository.subscription.ensure_indexes")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.collection", constant.MongoCollectionSubscription),
	)

	coll, err := sr.collection(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constant.MongoIndexCreateTimeout)
	defer cancel()

	indexNames, err := coll.Indexes().CreateMany(ctx, SubscriptionIndexes())
	if err != nil {
		if strings.Contains(err.Error(), "IndexOptionsConflict") ||
			strings.Contains(err.Error(), "already exists") {
			logger.Infof("Indexes for %s already exist (detected during creation)", constant.MongoCollectionSubscription)
			return nil
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to create indexes", err)
		logger.Errorf("Failed to create indexes for %s: %v", constant.MongoCollectionSubscription, err)

		return err
	}

	logger.Infof("Successfully created %d indexes for %s collection: %v",
		len(indexNames), constant.MongoCollectionSubscription, indexNames)

	return nil
}
