// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"testing"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/mongodb/subscription"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/pongo"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/rabbitmq"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/redis"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type useCaseMocks struct {
	subscriber *rabbitmq.MockSubscriber
	repo       *subscription.MockRepository
	history    *redis.MockHistoryRepository
}

func newTestUseCase(t *testing.T) (*UseCase, useCaseMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mocks := useCaseMocks{
		subscriber: rabbitmq.NewMockSubscriber(ctrl),
		repo:       subscription.NewMockRepository(ctrl),
		history:    redis.NewMockHistoryRepository(ctrl),
	}

	uc := &UseCase{
		Subscriber:       mocks.subscriber,
		SubscriptionRepo: mocks.repo,
		HistoryRepo:      mocks.history,
		Renderer:         pongo.NewMessageRenderer("", &log.NoneLogger{}),
		BreakerManager:   pkg.NewCircuitBreakerManager(&log.NoneLogger{}),
		DefaultQueue:     constant.DefaultQueue,
		Logger:           &log.NoneLogger{},
	}

	return uc, mocks
}

func TestWithLiveState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stored     string
		active     bool
		wantStatus string
	}{
		{name: "running consumer is active", stored: constant.SubscriptionStatusInterrupted, active: true, wantStatus: constant.SubscriptionStatusActive},
		{name: "active registration without consumer is interrupted", stored: constant.SubscriptionStatusActive, active: false, wantStatus: constant.SubscriptionStatusInterrupted},
		{name: "stopped registration stays stopped", stored: constant.SubscriptionStatusStopped, active: false, wantStatus: constant.SubscriptionStatusStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc, mocks := newTestUseCase(t)
			mocks.subscriber.EXPECT().IsActive("hello").Return(tt.active)

			uc.countReceived(context.Background(), "hello")
			uc.countReceived(context.Background(), "hello")

			sub := model.NewSubscription("hello", "tag")
			sub.Status = tt.stored

			got := uc.withLiveState(sub)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, int64(2), got.ReceivedCount)
		})
	}
}

func TestReceivedCount_UnknownQueue(t *testing.T) {
	t.Parallel()

	uc, _ := newTestUseCase(t)

	assert.Zero(t, uc.ReceivedCount("nothing"))
}

func TestDefaultQueueFallback(t *testing.T) {
	t.Parallel()

	uc := &UseCase{}

	assert.Equal(t, constant.DefaultQueue, uc.defaultQueue())
	assert.NotNil(t, uc.logger())
}
