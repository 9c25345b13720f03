// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/LerianStudio/rabbitmq-consumer-api/internal/adapters/http/in"
	"github.com/LerianStudio/rabbitmq-consumer-api/internal/adapters/rabbitmq"
	"github.com/LerianStudio/rabbitmq-consumer-api/internal/adapters/redis"
	"github.com/LerianStudio/rabbitmq-consumer-api/internal/services"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/mongodb/subscription"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/pongo"
	pkgRabbitmq "github.com/LerianStudio/rabbitmq-consumer-api/pkg/rabbitmq"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libMongo "github.com/LerianStudio/lib-commons/v3/commons/mongo"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	libRabbitmq "github.com/LerianStudio/lib-commons/v3/commons/rabbitmq"
	libRedis "github.com/LerianStudio/lib-commons/v3/commons/redis"
	libZap "github.com/LerianStudio/lib-commons/v3/commons/zap"
	"go.opentelemetry.io/otel/metric"
)

// mongoResources holds MongoDB-related resources created during initialization.
type mongoResources struct {
	connection       *libMongo.MongoConnection
	subscriptionRepo *subscription.SubscriptionMongoDBRepository
}

// redisResources holds Redis-related resources created during initialization.
type redisResources struct {
	connection  *libRedis.RedisConnection
	historyRepo *redis.HistoryRedisRepository
}

// cleanups runs registered functions in reverse order.
type cleanups []func()

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// initConfigAndLogger loads configuration from environment variables, validates it,
// and initializes the structured logger.
func initConfigAndLogger() (*Config, log.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := libZap.InitializeLoggerWithError()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger, nil
}

// initTelemetry initializes OpenTelemetry tracing and metrics and returns a cleanup
// function that flushes the providers.
func initTelemetry(cfg *Config, logger log.Logger) (*libOpentelemetry.Telemetry, func(), error) {
	telemetry, err := libOpentelemetry.InitializeTelemetryWithError(&libOpentelemetry.TelemetryConfig{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
		EnableTelemetry:           cfg.EnableTelemetry,
		Logger:                    logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	cleanup := func() {
		logger.Info("Cleanup: shutting down telemetry")
		telemetry.ShutdownTelemetry()
	}

	return telemetry, cleanup, nil
}

// initMongoDB establishes the MongoDB connection, creates the subscription repository
// and ensures its indexes exist.
func initMongoDB(cfg *Config, logger log.Logger) (*mongoResources, func(), error) {
	mongoSource := libMongo.BuildConnectionString(
		cfg.MongoURI, cfg.MongoDBUser, cfg.MongoDBPassword,
		cfg.MongoDBHost, cfg.MongoDBPort, cfg.MongoDBParameters, logger)

	mongoConnection := &libMongo.MongoConnection{
		ConnectionStringSource: mongoSource,
		Database:               cfg.MongoDBName,
		Logger:                 logger,
		MaxPoolSize:            cfg.mongoMaxPoolSize(),
	}

	subscriptionRepo, err := subscription.NewSubscriptionMongoDBRepository(mongoConnection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize subscription mongodb repository: %w", err)
	}

	logger.Info("Ensuring MongoDB indexes exist for subscriptions...")

	if err := subscriptionRepo.EnsureIndexes(libCommons.ContextWithLogger(context.Background(), logger)); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure subscription indexes: %w", err)
	}

	cleanup := func() {
		if mongoConnection.DB == nil {
			return
		}

		logger.Info("Cleanup: disconnecting MongoDB")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := mongoConnection.DB.Disconnect(ctx); err != nil {
			logger.Errorf("Cleanup: failed to disconnect MongoDB: %v", err)
		}
	}

	return &mongoResources{
		connection:       mongoConnection,
		subscriptionRepo: subscriptionRepo,
	}, cleanup, nil
}

// initRedis creates the Redis/Valkey connection and the history repository.
// History is best effort, so an unreachable server at boot is only logged.
func initRedis(cfg *Config, logger log.Logger) (*redisResources, func()) {
	redisConnection := &libRedis.RedisConnection{
		Address:  strings.Split(cfg.RedisHost, ","),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Logger:   logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), constant.ReadinessCheckTimeout)
	defer cancel()

	if err := redisConnection.Connect(ctx); err != nil {
		logger.Warnf("Redis not reachable at startup, message history disabled until it is: %v", err)
	}

	cleanup := func() {
		logger.Info("Cleanup: closing Redis connection")

		if err := redisConnection.Close(); err != nil {
			logger.Errorf("Cleanup: failed to close Redis connection: %v", err)
		}
	}

	return &redisResources{
		connection:  redisConnection,
		historyRepo: redis.NewHistoryRedisRepository(redisConnection, cfg.HistoryMaxLength, cfg.historyTTL()),
	}, cleanup
}

// initRabbitMQ dials the broker with bounded retries.
func initRabbitMQ(cfg *Config, logger log.Logger) (*pkgRabbitmq.Connection, func(), error) {
	rabbitSource := libRabbitmq.BuildRabbitMQConnectionString(
		cfg.RabbitURI, cfg.RabbitMQUser, cfg.RabbitMQPass, cfg.RabbitMQHost, cfg.RabbitMQPortAMQP, cfg.RabbitMQVHost)

	logger.Infof("RabbitMQ connecting to %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPortAMQP)

	rabbitMQConnection := pkgRabbitmq.NewConnection(&libRabbitmq.RabbitMQConnection{
		ConnectionStringSource: rabbitSource,
		HealthCheckURL:         cfg.RabbitMQHealthCheckURL,
		Host:                   cfg.RabbitMQHost,
		Port:                   cfg.RabbitMQPortAMQP,
		User:                   cfg.RabbitMQUser,
		Pass:                   cfg.RabbitMQPass,
		VHost:                  cfg.RabbitMQVHost,
		Logger:                 logger,
	}, cfg.RabbitMQConnectRetries)

	if err := rabbitMQConnection.Connect(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	cleanup := func() {
		logger.Info("Cleanup: closing RabbitMQ connection")

		if err := rabbitMQConnection.Close(); err != nil {
			logger.Errorf("Cleanup: failed to close RabbitMQ connection: %v", err)
		}
	}

	return rabbitMQConnection, cleanup, nil
}

// initService builds every component. On failure, what was already opened is closed.
func initService() (*Service, error) {
	cfg, logger, err := initConfigAndLogger()
	if err != nil {
		return nil, err
	}

	logStartup(cfg, logger)

	var opened cleanups

	telemetry, telemetryCleanup, err := initTelemetry(cfg, logger)
	if err != nil {
		return nil, err
	}

	opened = append(opened, telemetryCleanup)

	mongoRes, mongoCleanup, err := initMongoDB(cfg, logger)
	if err != nil {
		opened.run()

		return nil, err
	}

	opened = append(opened, mongoCleanup)

	redisRes, redisCleanup := initRedis(cfg, logger)
	opened = append(opened, redisCleanup)

	rabbitMQConnection, rabbitCleanup, err := initRabbitMQ(cfg, logger)
	if err != nil {
		opened.run()

		return nil, err
	}

	opened = append(opened, rabbitCleanup)

	tracer := telemetry.TracerProvider.Tracer(cfg.OtelLibraryName)
	subscriber := rabbitmq.NewSubscriberRabbitMQ(rabbitMQConnection, logger, tracer)

	receivedCounter, err := telemetry.MetricProvider.Meter(cfg.OtelLibraryName).Int64Counter(
		"messages.received",
		metric.WithDescription("Messages received by the queue consumers"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		logger.Warnf("Failed to create messages.received counter: %v", err)
	}

	useCase := &services.UseCase{
		Subscriber:       subscriber,
		SubscriptionRepo: mongoRes.subscriptionRepo,
		HistoryRepo:      redisRes.historyRepo,
		Renderer:         pongo.NewMessageRenderer(cfg.MessageLogTemplate, logger),
		BreakerManager:   pkg.NewCircuitBreakerManager(logger),
		ReceivedCounter:  receivedCounter,
		DefaultQueue:     cfg.RabbitMQDefaultQueue,
		Logger:           logger,
	}

	subscriber.SetOnLost(useCase.MarkSubscriptionLost)

	monitor := NewRabbitMQMonitor(rabbitMQConnection, cfg.monitorInterval(), func(ctx context.Context) {
		marked, err := useCase.MarkAllInterrupted(libCommons.ContextWithLogger(ctx, logger))
		if err != nil {
			logger.Errorf("Failed to mark subscriptions interrupted: %v", err)

			return
		}

		logger.Warnf("%d subscriptions marked interrupted", marked)
	}, logger)

	httpApp := in.NewRoutes(
		logger,
		telemetry,
		in.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: cfg.CORSAllowedMethods,
			AllowedHeaders: cfg.CORSAllowedHeaders,
		},
		&in.ValuesHandler{Service: useCase},
		&in.SubscriptionHandler{Service: useCase},
		&in.ReadinessDeps{
			RabbitMQConnection: rabbitMQConnection,
			MongoConnection:    mongoRes.connection,
			RedisConnection:    redisRes.connection,
		},
	)

	resumeCtx := libCommons.ContextWithTracer(libCommons.ContextWithLogger(context.Background(), logger), tracer)
	if _, err := useCase.ResumeSubscriptions(resumeCtx); err != nil {
		logger.Errorf("Failed to resume subscriptions: %v", err)
	}

	return &Service{
		Server:     NewServer(cfg, httpApp, logger),
		Logger:     logger,
		monitor:    monitor,
		subscriber: subscriber,
		cleanups:   opened,
	}, nil
}
