// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LerianStudio/rabbitmq-consumer-api/internal/services"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/mongodb/subscription"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/pongo"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/rabbitmq"
	pkgRedis "github.com/LerianStudio/rabbitmq-consumer-api/pkg/redis"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	libRedis "github.com/LerianStudio/lib-commons/v3/commons/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routeMocks struct {
	subscriber *rabbitmq.MockSubscriber
	repo       *subscription.MockRepository
	history    *pkgRedis.MockHistoryRepository
}

func newTestApp(t *testing.T, deps *ReadinessDeps) (*fiber.App, routeMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mocks := routeMocks{
		subscriber: rabbitmq.NewMockSubscriber(ctrl),
		repo:       subscription.NewMockRepository(ctrl),
		history:    pkgRedis.NewMockHistoryRepository(ctrl),
	}

	uc := &services.UseCase{
		Subscriber:       mocks.subscriber,
		SubscriptionRepo: mocks.repo,
		HistoryRepo:      mocks.history,
		Renderer:         pongo.NewMessageRenderer("", &log.NoneLogger{}),
		BreakerManager:   pkg.NewCircuitBreakerManager(&log.NoneLogger{}),
		DefaultQueue:     constant.DefaultQueue,
		Logger:           &log.NoneLogger{},
	}

	app := NewRoutes(
		&log.NoneLogger{},
		newTestTelemetry(t),
		CORSConfig{AllowedOrigins: "*"},
		&ValuesHandler{Service: uc},
		&SubscriptionHandler{Service: uc},
		deps,
	)

	return app, mocks
}

func newTestTelemetry(t *testing.T) *libOpentelemetry.Telemetry {
	t.Helper()

	tl, err := libOpentelemetry.InitializeTelemetryWithError(&libOpentelemetry.TelemetryConfig{
		LibraryName:     constant.ApplicationName,
		ServiceName:     constant.ApplicationName,
		EnableTelemetry: false,
		Logger:          &log.NoneLogger{},
	})
	require.NoError(t, err)

	return tl
}

func expectRegister(m routeMocks, queue, tag string) {
	m.subscriber.EXPECT().Subscribe(gomock.Any(), queue, gomock.Any()).Return(tag, nil)
	m.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *model.Subscription) (*model.Subscription, error) {
			return s, nil
		})
	m.subscriber.EXPECT().IsActive(queue).Return(true)
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))

	code, _ := payload["code"].(string)

	return code
}

func TestGetValues(t *testing.T) {
	t.Parallel()

	t.Run("registers the default queue and returns an empty 200", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		expectRegister(mocks, "hello", "tag-1")

		resp, body := doRequest(t, app, http.MethodGet, "/values", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, body)
		assert.NotEmpty(t, resp.Header.Get(constant.HeaderID))
	})

	t.Run("route matching ignores case", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		expectRegister(mocks, "hello", "tag-1")

		resp, _ := doRequest(t, app, http.MethodGet, "/Values", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("broker failure is 503", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		mocks.subscriber.EXPECT().Subscribe(gomock.Any(), "hello", gomock.Any()).Return("", errors.New("connection closed"))

		resp, body := doRequest(t, app, http.MethodGet, "/values", "")

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, constant.ErrBrokerUnavailable.Error(), errorCode(t, body))
	})

	t.Run("carries the caller request id into the service context", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)

		var gotRequestID string

		mocks.subscriber.EXPECT().Subscribe(gomock.Any(), "hello", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ string, _ rabbitmq.MessageHandlerFunc) (string, error) {
				_, _, gotRequestID, _ = libCommons.NewTrackingFromContext(ctx)

				return "tag-1", nil
			})
		mocks.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s *model.Subscription) (*model.Subscription, error) {
				return s, nil
			})
		mocks.subscriber.EXPECT().IsActive("hello").Return(true)

		req := httptest.NewRequest(http.MethodGet, "/values", nil)
		req.Header.Set(constant.HeaderID, "req-123")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "req-123", gotRequestID)
	})
}

func TestCreateSubscription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		mockSetup  func(m routeMocks)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"queue":"orders"}`,
			mockSetup:  func(m routeMocks) { expectRegister(m, "orders", "tag-orders") },
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing queue",
			body:       `{}`,
			mockSetup:  func(m routeMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   constant.ErrMissingFieldsInRequest.Error(),
		},
		{
			name:       "unknown field",
			body:       `{"queue":"orders","durable":true}`,
			mockSetup:  func(m routeMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   constant.ErrUnexpectedFieldsInTheRequest.Error(),
		},
		{
			name:       "reserved queue",
			body:       `{"queue":"amq.gen-1"}`,
			mockSetup:  func(m routeMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   constant.ErrReservedQueueName.Error(),
		},
		{
			name:       "queue with slash",
			body:       `{"queue":"orders/eu"}`,
			mockSetup:  func(m routeMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   constant.ErrInvalidQueueName.Error(),
		},
		{
			name:       "empty body",
			body:       "",
			mockSetup:  func(m routeMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   constant.ErrMissingRequiredFields.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, mocks := newTestApp(t, nil)
			tt.mockSetup(mocks)

			resp, body := doRequest(t, app, http.MethodPost, "/v1/subscriptions", tt.body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, body))

				return
			}

			var sub model.Subscription
			require.NoError(t, json.Unmarshal(body, &sub))
			assert.Equal(t, "orders", sub.Queue)
			assert.Equal(t, constant.SubscriptionStatusActive, sub.Status)
		})
	}
}

func TestGetSubscriptions(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		mocks.repo.EXPECT().FindAll(gomock.Any()).Return([]*model.Subscription{model.NewSubscription("hello", "tag")}, nil)
		mocks.subscriber.EXPECT().IsActive("hello").Return(true)

		resp, body := doRequest(t, app, http.MethodGet, "/v1/subscriptions", "")

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var subs []model.Subscription
		require.NoError(t, json.Unmarshal(body, &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, "hello", subs[0].Queue)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		mocks.repo.EXPECT().FindAll(gomock.Any()).Return(nil, nil)

		resp, body := doRequest(t, app, http.MethodGet, "/v1/subscriptions", "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, "[]", string(body))
	})

	t.Run("unknown queue is 404", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		mocks.repo.EXPECT().FindByQueue(gomock.Any(), "missing").
			Return(nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, "Subscription", "missing"))

		resp, body := doRequest(t, app, http.MethodGet, "/v1/subscriptions/missing", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, constant.ErrEntityNotFound.Error(), errorCode(t, body))
	})

	t.Run("reserved queue path is 400", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, nil)

		resp, body := doRequest(t, app, http.MethodGet, "/v1/subscriptions/amq.direct", "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, constant.ErrReservedQueueName.Error(), errorCode(t, body))
	})

	t.Run("queue name outlives the request buffer", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)

		var seen []string

		mocks.repo.EXPECT().FindByQueue(gomock.Any(), gomock.Any()).Times(2).
			DoAndReturn(func(_ context.Context, queue string) (*model.Subscription, error) {
				seen = append(seen, queue)

				return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, "Subscription", queue)
			})

		doRequest(t, app, http.MethodGet, "/v1/subscriptions/orders", "")
		doRequest(t, app, http.MethodGet, "/v1/subscriptions/zzzzzz", "")

		assert.Equal(t, []string{"orders", "zzzzzz"}, seen)
	})
}

func TestDeleteSubscription(t *testing.T) {
	t.Parallel()

	t.Run("stopped", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		mocks.repo.EXPECT().FindByQueue(gomock.Any(), "hello").Return(model.NewSubscription("hello", "tag"), nil)
		mocks.subscriber.EXPECT().Unsubscribe(gomock.Any(), "hello").Return(nil)
		mocks.repo.EXPECT().UpdateStatus(gomock.Any(), "hello", constant.SubscriptionStatusStopped).Return(nil)
		mocks.history.EXPECT().Clear(gomock.Any(), "hello").Return(nil)

		resp, _ := doRequest(t, app, http.MethodDelete, "/v1/subscriptions/hello", "")

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("unknown queue is 404", func(t *testing.T) {
		t.Parallel()

		app, mocks := newTestApp(t, nil)
		mocks.repo.EXPECT().FindByQueue(gomock.Any(), "missing").
			Return(nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, "Subscription", "missing"))

		resp, _ := doRequest(t, app, http.MethodDelete, "/v1/subscriptions/missing", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetReceivedMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		mockSetup  func(m routeMocks)
		wantStatus int
		wantCode   string
	}{
		{
			name:  "default limit",
			query: "",
			mockSetup: func(m routeMocks) {
				m.repo.EXPECT().FindByQueue(gomock.Any(), "hello").Return(model.NewSubscription("hello", "tag"), nil)
				m.history.EXPECT().List(gomock.Any(), "hello", constant.DefaultPaginationLimit).
					Return([]model.ReceivedMessage{{Queue: "hello", Body: "hi"}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "explicit limit",
			query: "?limit=3",
			mockSetup: func(m routeMocks) {
				m.repo.EXPECT().FindByQueue(gomock.Any(), "hello").Return(model.NewSubscription("hello", "tag"), nil)
				m.history.EXPECT().List(gomock.Any(), "hello", 3).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid limit",
			query:      "?limit=abc",
			mockSetup:  func(m routeMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   constant.ErrInvalidQueryParameter.Error(),
		},
		{
			name:       "limit above maximum",
			query:      "?limit=500",
			mockSetup:  func(m routeMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   constant.ErrPaginationLimitExceeded.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, mocks := newTestApp(t, nil)
			tt.mockSetup(mocks)

			resp, body := doRequest(t, app, http.MethodGet, "/v1/subscriptions/hello/messages"+tt.query, "")

			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, body))
			}
		})
	}
}

func TestHealthAndVersion(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", string(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp, body = doRequest(t, app, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "version")
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	deps := &ReadinessDeps{
		RedisConnection: &libRedis.RedisConnection{Address: []string{mr.Addr()}, Logger: &log.NoneLogger{}},
	}

	app, _ := newTestApp(t, deps)

	resp, body := doRequest(t, app, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var payload struct {
		Status       string                       `json:"status"`
		Dependencies map[string]*dependencyResult `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, statusNotReady, payload.Status)
	assert.Equal(t, statusReady, payload.Dependencies["redis"].Status)
	assert.Equal(t, statusNotReady, payload.Dependencies["rabbitmq"].Status)
	assert.Equal(t, statusNotReady, payload.Dependencies["mongodb"].Status)
}

func TestReadiness_NilDeps(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
