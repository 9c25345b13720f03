// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/pongo"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libZap "github.com/LerianStudio/lib-commons/v3/commons/zap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedContext(level zapcore.Level) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(level)

	return libCommons.ContextWithLogger(context.Background(), &libZap.ZapWithTraceLogger{Logger: zap.New(core).Sugar()}), logs
}

func TestHandleMessage_LogsReceivedLine(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)
	ctx, logs := observedContext(zapcore.InfoLevel)

	msg := model.ReceivedMessage{Queue: "hello", Body: "Hello World!"}

	mocks.history.EXPECT().Append(gomock.Any(), msg).Return(nil)

	require.NoError(t, uc.HandleMessage(ctx, msg))

	entries := logs.FilterMessage(" [x] Received Hello World!").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(1), uc.ReceivedCount("hello"))
}

func TestHandleMessage_CustomTemplate(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)
	uc.Renderer = pongo.NewMessageRenderer("[{{ queue }}] {{ message }}", &log.NoneLogger{})
	ctx, logs := observedContext(zapcore.InfoLevel)

	msg := model.ReceivedMessage{Queue: "orders", Body: "<b>42</b>"}
	mocks.history.EXPECT().Append(gomock.Any(), msg).Return(nil)

	require.NoError(t, uc.HandleMessage(ctx, msg))

	assert.Equal(t, 1, logs.FilterMessage("[orders] <b>42</b>").Len())
}

func TestHandleMessage_HistoryFailureIsNotPropagated(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)
	ctx, logs := observedContext(zapcore.WarnLevel)

	msg := model.ReceivedMessage{Queue: "hello", Body: "x"}
	mocks.history.EXPECT().Append(gomock.Any(), msg).Return(errors.New("connection refused"))

	require.NoError(t, uc.HandleMessage(ctx, msg))

	assert.Equal(t, 1, logs.FilterMessageSnippet("not kept in history").Len())
	assert.Equal(t, int64(1), uc.ReceivedCount("hello"))
}

func TestHandleMessage_WithoutHistory(t *testing.T) {
	t.Parallel()

	uc, _ := newTestUseCase(t)
	uc.HistoryRepo = nil

	require.NoError(t, uc.HandleMessage(context.Background(), model.ReceivedMessage{Queue: "hello", Body: "x"}))
	assert.Equal(t, int64(1), uc.ReceivedCount("hello"))
}

func TestHandleMessage_RecordsReceivedMetric(t *testing.T) {
	t.Parallel()

	uc, mocks := newTestUseCase(t)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	counter, err := provider.Meter("test").Int64Counter("messages.received")
	require.NoError(t, err)

	uc.ReceivedCounter = counter

	mocks.history.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	require.NoError(t, uc.HandleMessage(context.Background(), model.ReceivedMessage{Queue: "hello", Body: "a"}))
	require.NoError(t, uc.HandleMessage(context.Background(), model.ReceivedMessage{Queue: "hello", Body: "b"}))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	queue, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("queue"))
	require.True(t, ok)
	assert.Equal(t, "hello", queue.AsString())
}
