// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/rabbitmq"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// consumer is one running subscription. It owns its channel.
type consumer struct {
	queue   string
	tag     string
	channel rabbitmq.AMQPChannel
	cancel  context.CancelFunc
	done    chan struct{}
}

// SubscriberRabbitMQ runs one consumer goroutine per queue on channels opened from a shared connection.
type SubscriberRabbitMQ struct {
	conn   rabbitmq.ChannelOpener
	logger log.Logger
	tracer trace.Tracer

	mu        sync.Mutex
	consumers map[string]*consumer
	onLost    func(queue string)
	closed    bool
	wg        sync.WaitGroup
}

// NewSubscriberRabbitMQ creates a subscriber on conn.
func NewSubscriberRabbitMQ(conn rabbitmq.ChannelOpener, logger log.Logger, tracer trace.Tracer) *SubscriberRabbitMQ {
	return &SubscriberRabbitMQ{
		conn:      conn,
		logger:    logger,
		tracer:    tracer,
		consumers: make(map[string]*consumer),
	}
}

// SetOnLost registers fn to run when a consumer stops without being unsubscribed.
func (s *SubscriberRabbitMQ) SetOnLost(fn func(queue string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onLost = fn
}

// Subscribe declares queue and starts consuming it. An already running consumer is reused.
func (s *SubscriberRabbitMQ) Subscribe(ctx context.Context, queue string, handler rabbitmq.MessageHandlerFunc) (string, error) {
	logger := libCommons.NewLoggerFromContext(ctx)

	_, span := s.tracer.Start(ctx, "consumer.rabbitmq.subscribe")
	defer span.End()

	span.SetAttributes(attribute.String("app.request.rabbitmq.queue", queue))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", rabbitmq.ErrSubscriberClosed
	}

	if existing, ok := s.consumers[queue]; ok {
		logger.Infof("Consumer for queue %s already running with tag %s", queue, existing.tag)

		return existing.tag, nil
	}

	ch, err := s.conn.OpenChannel()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to open channel", err)

		return "", fmt.Errorf("open channel for queue %s: %w", queue, err)
	}

	closeNotify := ch.NotifyClose(make(chan *amqp091.Error, 1))

	if _, err := ch.QueueDeclare(
		queue,
		constant.QueueDurable,
		constant.QueueAutoDelete,
		constant.QueueExclusive,
		constant.QueueNoWait,
		nil,
	); err != nil {
		_ = ch.Close()

		libOpentelemetry.HandleSpanError(&span, "Failed to declare queue", err)

		return "", fmt.Errorf("declare queue %s: %w", queue, err)
	}

	tag := fmt.Sprintf("%s-%s-%s", constant.ApplicationName, queue, libCommons.GenerateUUIDv7().String())

	deliveries, err := ch.Consume(
		queue,
		tag,
		constant.ConsumeAutoAck,
		constant.ConsumeExclusive,
		constant.ConsumeNoLocal,
		constant.ConsumeNoWait,
		nil,
	)
	if err != nil {
		_ = ch.Close()

		libOpentelemetry.HandleSpanError(&span, "Failed to start consuming", err)

		return "", fmt.Errorf("consume queue %s: %w", queue, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	c := &consumer{
		queue:   queue,
		tag:     tag,
		channel: ch,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	s.consumers[queue] = c
	s.wg.Add(1)

	pkg.GoNamed(s.logger, "consumer "+tag, func() {
		s.run(runCtx, c, deliveries, closeNotify, handler)
	})

	span.SetAttributes(attribute.String("app.request.rabbitmq.consumer_tag", tag))
	logger.Infof("Started consumer %s on queue %s", tag, queue)

	return tag, nil
}

func (s *SubscriberRabbitMQ) run(ctx context.Context, c *consumer, deliveries <-chan amqp091.Delivery, closeNotify <-chan *amqp091.Error, handler rabbitmq.MessageHandlerFunc) {
	defer s.wg.Done()
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				s.lost(c, nil)

				return
			}

			s.process(c, handler, delivery)
		case amqpErr, ok := <-closeNotify:
			if !ok {
				amqpErr = nil
			}

			s.lost(c, amqpErr)

			return
		}
	}
}

// process handles one delivery. Handler panics are recovered so the consumer keeps running.
func (s *SubscriberRabbitMQ) process(c *consumer, handler rabbitmq.MessageHandlerFunc, delivery amqp091.Delivery) {
	requestID, _ := delivery.Headers[constant.HeaderID].(string)
	if libCommons.IsNilOrEmpty(&requestID) {
		requestID = libCommons.GenerateUUIDv7().String()
	}

	logger := s.logger.WithFields(constant.HeaderID, requestID, "queue", c.queue)

	ctx := libCommons.ContextWithHeaderID(context.Background(), requestID)
	ctx = libCommons.ContextWithLogger(ctx, logger)
	ctx = libCommons.ContextWithTracer(ctx, s.tracer)
	ctx = libOpentelemetry.ExtractTraceContextFromQueueHeaders(ctx, delivery.Headers)

	ctx, span := s.tracer.Start(ctx, "consumer.rabbitmq.process_message")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", requestID),
		attribute.String("app.request.rabbitmq.queue", c.queue),
		attribute.String("app.request.rabbitmq.consumer_tag", c.tag),
		attribute.Int64("app.request.rabbitmq.delivery_tag", int64(delivery.DeliveryTag)),
	)

	msg := ToReceivedMessage(c.queue, requestID, delivery)

	pkg.SafeCall(logger, "message handler", func() {
		if err := handler(ctx, msg); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Error processing message", err)
			logger.Errorf("Error processing message from queue %s: %v", c.queue, err)
		}
	})
}

// ToReceivedMessage copies the delivery fields kept in history. The body is decoded as UTF-8.
func ToReceivedMessage(queue, requestID string, delivery amqp091.Delivery) model.ReceivedMessage {
	receivedAt := time.Now().UTC()

	return model.ReceivedMessage{
		Queue:       queue,
		Body:        model.DecodeBody(delivery.Body),
		MessageID:   delivery.MessageId,
		ContentType: delivery.ContentType,
		RoutingKey:  delivery.RoutingKey,
		Exchange:    delivery.Exchange,
		ConsumerTag: delivery.ConsumerTag,
		DeliveryTag: delivery.DeliveryTag,
		Redelivered: delivery.Redelivered,
		RequestID:   requestID,
		ReceivedAt:  receivedAt,
	}
}

// lost drops c if it is still registered and notifies the onLost callback.
func (s *SubscriberRabbitMQ) lost(c *consumer, reason *amqp091.Error) {
	s.mu.Lock()

	current, ok := s.consumers[c.queue]
	if !ok || current != c {
		s.mu.Unlock()

		return
	}

	delete(s.consumers, c.queue)

	onLost := s.onLost

	s.mu.Unlock()

	c.cancel()

	if reason != nil {
		s.logger.Warnf("Consumer %s on queue %s stopped: %s", c.tag, c.queue, reason.Error())
	} else {
		s.logger.Warnf("Consumer %s on queue %s stopped: delivery channel closed", c.tag, c.queue)
	}

	if err := c.channel.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
		s.logger.Warnf("Failed to close channel of queue %s: %v", c.queue, err)
	}

	if onLost != nil {
		pkg.SafeCall(s.logger, "onLost callback", func() {
			onLost(c.queue)
		})
	}
}

// Unsubscribe cancels the consumer of queue and closes its channel.
func (s *SubscriberRabbitMQ) Unsubscribe(ctx context.Context, queue string) error {
	logger := libCommons.NewLoggerFromContext(ctx)

	s.mu.Lock()

	c, ok := s.consumers[queue]
	if !ok {
		s.mu.Unlock()

		return rabbitmq.ErrNotSubscribed
	}

	delete(s.consumers, queue)
	s.mu.Unlock()

	s.stop(c)

	logger.Infof("Stopped consumer %s on queue %s", c.tag, queue)

	return nil
}

func (s *SubscriberRabbitMQ) stop(c *consumer) {
	c.cancel()

	if err := c.channel.Cancel(c.tag, false); err != nil && !errors.Is(err, amqp091.ErrClosed) {
		s.logger.Warnf("Failed to cancel consumer %s: %v", c.tag, err)
	}

	if err := c.channel.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
		s.logger.Warnf("Failed to close channel of queue %s: %v", c.queue, err)
	}

	<-c.done
}

// IsActive reports whether a consumer is running for queue.
func (s *SubscriberRabbitMQ) IsActive(queue string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.consumers[queue]

	return ok
}

// ActiveQueues returns the queues with a running consumer, sorted.
func (s *SubscriberRabbitMQ) ActiveQueues() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	queues := make([]string, 0, len(s.consumers))
	for queue := range s.consumers {
		queues = append(queues, queue)
	}

	sort.Strings(queues)

	return queues
}

// Close stops every consumer. Calling it again is a no-op.
func (s *SubscriberRabbitMQ) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true

	consumers := make([]*consumer, 0, len(s.consumers))
	for _, c := range s.consumers {
		consumers = append(consumers, c)
	}

	s.consumers = make(map[string]*consumer)
	s.mu.Unlock()

	for _, c := range consumers {
		s.stop(c)
	}

	s.wg.Wait()

	s.logger.Infof("Subscriber closed, %d consumers stopped", len(consumers))

	return nil
}
