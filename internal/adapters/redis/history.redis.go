// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	libRedis "github.com/LerianStudio/lib-commons/v3/commons/redis"
	"go.opentelemetry.io/otel/attribute"
)

// HistoryRedisRepository is a Redis implementation of the received message history.
// Each queue is a list, newest first, trimmed to MaxLength and expiring after TTL.
type HistoryRedisRepository struct {
	conn      *libRedis.RedisConnection
	MaxLength int
	TTL       time.Duration
}

// NewHistoryRedisRepository returns a new instance of HistoryRedisRepository using the given Redis connection.
func NewHistoryRedisRepository(rc *libRedis.RedisConnection, maxLength int, ttl time.Duration) *HistoryRedisRepository {
	if maxLength <= 0 {
		maxLength = constant.DefaultHistoryMaxLength
	}

	if ttl <= 0 {
		ttl = constant.DefaultHistoryTTL
	}

	return &HistoryRedisRepository{
		conn:      rc,
		MaxLength: maxLength,
		TTL:       ttl,
	}
}

// HistoryKey is the list key of queue.
func HistoryKey(queue string) string {
	return fmt.Sprintf("%s:%s", constant.HistoryKeyPrefix, queue)
}

// Append pushes msg to the head of its queue list.
func (hr *HistoryRedisRepository) Append(ctx context.Context, msg model.ReceivedMessage) error {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "repository.redis.history_append")
	defer span.End()

	key := HistoryKey(msg.Queue)

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.key", key),
	)

	payload, err := json.Marshal(msg)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to marshal message", err)

		return fmt.Errorf("marshal history entry: %w", err)
	}

	rds, err := hr.conn.GetClient(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get redis", err)

		return err
	}

	pipe := rds.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(hr.MaxLength-1))
	pipe.Expire(ctx, key, hr.TTL)

	if _, err := pipe.Exec(ctx); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to append history on redis", err)

		return fmt.Errorf("append history of %s: %w", msg.Queue, err)
	}

	return nil
}

// List returns up to limit messages of queue, newest first. Undecodable entries are skipped.
func (hr *HistoryRedisRepository) List(ctx context.Context, queue string, limit int) ([]model.ReceivedMessage, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "repository.redis.history_list")
	defer span.End()

	key := HistoryKey(queue)

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.key", key),
		attribute.Int("app.request.limit", limit),
	)

	if limit <= 0 {
		limit = constant.DefaultPaginationLimit
	}

	rds, err := hr.conn.GetClient(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get redis", err)

		return nil, err
	}

	values, err := rds.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to read history on redis", err)

		return nil, fmt.Errorf("list history of %s: %w", queue, err)
	}

	messages := make([]model.ReceivedMessage, 0, len(values))

	for _, value := range values {
		var msg model.ReceivedMessage
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			logger.Warnf("Skipping undecodable history entry of %s: %v", queue, err)

			continue
		}

		messages = append(messages, msg)
	}

	return messages, nil
}

// Clear removes the history of queue.
func (hr *HistoryRedisRepository) Clear(ctx context.Context, queue string) error {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "repository.redis.history_clear")
	defer span.End()

	key := HistoryKey(queue)

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.key", key),
	)

	rds, err := hr.conn.GetClient(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get redis", err)

		return err
	}

	if err := rds.Del(ctx, key).Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to del on redis", err)

		return fmt.Errorf("clear history of %s: %w", queue, err)
	}

	return nil
}
