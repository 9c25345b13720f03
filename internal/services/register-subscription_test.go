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

func TestRegisterSubscription(t *testing.T) {
	t.Parallel()

	errBroker := errors.New("channel/connection is not open")
	errStore := errors.New("server selection timeout")

	tests := []struct {
		name       string
		queue      string
		mockSetup  func(m useCaseMocks)
		expectErr  bool
		errCode    string
		wantStatus string
	}{
		{
			name:  "Success - registers the queue",
			queue: "hello",
			mockSetup: func(m useCaseMocks) {
				m.subscriber.EXPECT().Subscribe(gomock.Any(), "hello", gomock.Any()).Return("tag-1", nil)
				m.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, s *model.Subscription) (*model.Subscription, error) {
						return s, nil
					})
				m.subscriber.EXPECT().IsActive("hello").Return(true)
			},
			wantStatus: constant.SubscriptionStatusActive,
		},
		{
			name:      "Error - blank queue name",
			queue:     "  ",
			mockSetup: func(m useCaseMocks) {},
			expectErr: true,
			errCode:   constant.ErrInvalidQueueName.Error(),
		},
		{
			name:      "Error - reserved queue name",
			queue:     "amq.direct",
			mockSetup: func(m useCaseMocks) {},
			expectErr: true,
			errCode:   constant.ErrReservedQueueName.Error(),
		},
		{
			name:  "Error - broker failure",
			queue: "hello",
			mockSetup: func(m useCaseMocks) {
				m.subscriber.EXPECT().Subscribe(gomock.Any(), "hello", gomock.Any()).Return("", errBroker)
			},
			expectErr: true,
			errCode:   "not reachable",
		},
		{
			name:  "Success - store failure keeps the running consumer",
			queue: "hello",
			mockSetup: func(m useCaseMocks) {
				m.subscriber.EXPECT().Subscribe(gomock.Any(), "hello", gomock.Any()).Return("tag-1", nil)
				m.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil, errStore)
				m.subscriber.EXPECT().IsActive("hello").Return(true)
			},
			wantStatus: constant.SubscriptionStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc, mocks := newTestUseCase(t)
			tt.mockSetup(mocks)

			result, err := uc.RegisterSubscription(context.Background(), tt.queue)

			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errCode)
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.queue, result.Queue)
			assert.Equal(t, "tag-1", result.ConsumerTag)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.True(t, result.AutoAck)
			assert.False(t, result.Durable)
			assert.False(t, result.Exclusive)
			assert.False(t, result.AutoDelete)
		})
	}
}

func TestRegisterSubscription_BrokerErrorIsServiceUnavailable(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)
	mocks.subscriber.EXPECT().Subscribe(gomock.Any(), "hello", gomock.Any()).Return("", errors.New("boom"))

	_, err := uc.RegisterSubscription(context.Background(), "hello")

	var unavailable pkg.ServiceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, constant.ErrBrokerUnavailable.Error(), unavailable.Code)
}

func TestRegisterSubscription_OpenBreakerSkipsBroker(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)

	mocks.subscriber.EXPECT().
		Subscribe(gomock.Any(), "hello", gomock.Any()).
		Return("", errors.New("boom")).
		Times(constant.CircuitBreakerThreshold)

	for i := 0; i < constant.CircuitBreakerThreshold; i++ {
		_, err := uc.RegisterSubscription(context.Background(), "hello")
		require.Error(t, err)
	}

	assert.Equal(t, constant.CircuitBreakerStateOpen, uc.BreakerManager.GetState(constant.BreakerBroker))

	_, err := uc.RegisterSubscription(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestRegisterDefaultSubscription(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)
	uc.DefaultQueue = ""

	mocks.subscriber.EXPECT().Subscribe(gomock.Any(), constant.DefaultQueue, gomock.Any()).Return("tag-1", nil)
	mocks.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *model.Subscription) (*model.Subscription, error) {
			return s, nil
		})
	mocks.subscriber.EXPECT().IsActive(constant.DefaultQueue).Return(true)

	result, err := uc.RegisterDefaultSubscription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Queue)
}

func TestRegisterSubscription_RepeatedCallsKeepOneConsumer(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)

	stored := model.NewSubscription("hello", "tag-1")

	mocks.subscriber.EXPECT().Subscribe(gomock.Any(), "hello", gomock.Any()).Return("tag-1", nil).Times(2)
	mocks.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *model.Subscription) (*model.Subscription, error) {
			copied := *stored
			copied.ConsumerTag = s.ConsumerTag

			return &copied, nil
		}).Times(2)
	mocks.subscriber.EXPECT().IsActive("hello").Return(true).Times(2)

	first, err := uc.RegisterSubscription(context.Background(), "hello")
	require.NoError(t, err)

	second, err := uc.RegisterSubscription(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ConsumerTag, second.ConsumerTag)
}
