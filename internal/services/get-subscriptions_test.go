// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGetAllSubscriptions(t *testing.T) {
	t.Parallel()

	t.Run("Success - live status and counters", func(t *testing.T) {
		t.Parallel()

		uc, mocks := newTestUseCase(t)

		hello := model.NewSubscription("hello", "tag-hello")
		orders := model.NewSubscription("orders", "tag-orders")

		mocks.repo.EXPECT().FindAll(gomock.Any()).Return([]*model.Subscription{hello, orders}, nil)
		mocks.subscriber.EXPECT().IsActive("hello").Return(true)
		mocks.subscriber.EXPECT().IsActive("orders").Return(false)

		uc.countReceived(context.Background(), "hello")

		result, err := uc.GetAllSubscriptions(context.Background())
		require.NoError(t, err)
		require.Len(t, result, 2)

		assert.Equal(t, constant.SubscriptionStatusActive, result[0].Status)
		assert.Equal(t, int64(1), result[0].ReceivedCount)
		assert.Equal(t, constant.SubscriptionStatusInterrupted, result[1].Status)
		assert.Zero(t, result[1].ReceivedCount)
	})

	t.Run("Error - store failure", func(t *testing.T) {
		t.Parallel()

		uc, mocks := newTestUseCase(t)
		mocks.repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("boom"))

		result, err := uc.GetAllSubscriptions(context.Background())
		require.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestGetSubscriptionByQueue(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		uc, mocks := newTestUseCase(t)

		mocks.repo.EXPECT().FindByQueue(gomock.Any(), "hello").Return(model.NewSubscription("hello", "tag"), nil)
		mocks.subscriber.EXPECT().IsActive("hello").Return(true)

		result, err := uc.GetSubscriptionByQueue(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", result.Queue)
		assert.Equal(t, constant.SubscriptionStatusActive, result.Status)
	})

	t.Run("Error - not found", func(t *testing.T) {
		t.Parallel()

		uc, mocks := newTestUseCase(t)

		mocks.repo.EXPECT().FindByQueue(gomock.Any(), "missing").
			Return(nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, "Subscription", "missing"))

		result, err := uc.GetSubscriptionByQueue(context.Background(), "missing")
		require.Error(t, err)
		assert.Nil(t, result)

		var notFound pkg.EntityNotFoundError
		assert.True(t, errors.As(err, &notFound))
	})
}
