// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/go-playground/validator/v10"
)

// Config is the top level configuration struct for the entire application.
// Durations and the pool size stay strings so SetConfigFromEnvVars can load them.
type Config struct {
	EnvName                   string `env:"ENV_NAME"`
	ServerAddress             string `env:"SERVER_ADDRESS" validate:"required"`
	LogLevel                  string `env:"LOG_LEVEL"`
	OtelServiceName           string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName           string `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion        string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv         string `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTelemetry           bool   `env:"ENABLE_TELEMETRY"`
	CORSAllowedOrigins        string `env:"CORS_ALLOWED_ORIGINS"`
	CORSAllowedMethods        string `env:"CORS_ALLOWED_METHODS"`
	CORSAllowedHeaders        string `env:"CORS_ALLOWED_HEADERS"`
	RabbitURI                 string `env:"RABBITMQ_URI" validate:"required"`
	RabbitMQHost              string `env:"RABBITMQ_HOST" validate:"required"`
	RabbitMQPortAMQP          string `env:"RABBITMQ_PORT_AMQP" validate:"required"`
	RabbitMQPortHost          string `env:"RABBITMQ_PORT_HOST"`
	RabbitMQUser              string `env:"RABBITMQ_DEFAULT_USER" validate:"required"`
	RabbitMQPass              string `env:"RABBITMQ_DEFAULT_PASS" validate:"required"`
	RabbitMQVHost             string `env:"RABBITMQ_VHOST"`
	RabbitMQDefaultQueue      string `env:"RABBITMQ_DEFAULT_QUEUE" validate:"required,max=255"`
	RabbitMQHealthCheckURL    string `env:"RABBITMQ_HEALTH_CHECK_URL"`
	RabbitMQConnectRetries    int    `env:"RABBITMQ_CONNECT_RETRIES" validate:"min=1"`
	ConnectionMonitorInterval string `env:"CONNECTION_MONITOR_INTERVAL" validate:"duration_min=1s"`
	MongoURI                  string `env:"MONGO_URI" validate:"required"`
	MongoDBHost               string `env:"MONGO_HOST" validate:"required"`
	MongoDBPort               string `env:"MONGO_PORT"`
	MongoDBUser               string `env:"MONGO_USER"`
	MongoDBPassword           string `env:"MONGO_PASSWORD"`
	MongoDBName               string `env:"MONGO_NAME" validate:"required"`
	MongoDBParameters         string `env:"MONGO_PARAMETERS"`
	MongoMaxPoolSize          string `env:"MONGO_MAX_POOL_SIZE"`
	RedisHost                 string `env:"REDIS_HOST" validate:"required"`
	RedisPassword             string `env:"REDIS_PASSWORD"`
	RedisDB                   int    `env:"REDIS_DB" validate:"min=0"`
	HistoryMaxLength          int    `env:"HISTORY_MAX_LENGTH" validate:"min=1"`
	HistoryTTL                string `env:"HISTORY_TTL" validate:"duration_min=1s"`
	MessageLogTemplate        string `env:"MESSAGE_LOG_TEMPLATE"`
}

// applyDefaults fills every setting the environment left empty.
func (c *Config) applyDefaults() {
	defaults := []struct {
		field *string
		value string
	}{
		{&c.EnvName, "development"},
		{&c.ServerAddress, ":4000"},
		{&c.LogLevel, "info"},
		{&c.OtelServiceName, constant.ApplicationName},
		{&c.OtelLibraryName, "github.com/LerianStudio/rabbitmq-consumer-api"},
		{&c.OtelServiceVersion, "0.0.0"},
		{&c.OtelDeploymentEnv, "development"},
		{&c.CORSAllowedOrigins, "*"},
		{&c.CORSAllowedMethods, "GET,POST,DELETE,OPTIONS"},
		{&c.CORSAllowedHeaders, "Origin,Content-Type,Accept,X-Request-Id"},
		{&c.RabbitURI, "amqp"},
		{&c.RabbitMQHost, "localhost"},
		{&c.RabbitMQPortAMQP, "5672"},
		{&c.RabbitMQUser, "guest"},
		{&c.RabbitMQPass, "guest"},
		{&c.RabbitMQDefaultQueue, constant.DefaultQueue},
		{&c.ConnectionMonitorInterval, constant.ConnectionMonitorInterval.String()},
		{&c.MongoURI, "mongodb"},
		{&c.MongoDBHost, "localhost"},
		{&c.MongoDBPort, "27017"},
		{&c.MongoDBName, "consumer"},
		{&c.MongoMaxPoolSize, strconv.Itoa(constant.DefaultMongoMaxPoolSize)},
		{&c.RedisHost, "localhost:6379"},
		{&c.HistoryTTL, constant.DefaultHistoryTTL.String()},
	}

	for _, d := range defaults {
		if strings.TrimSpace(*d.field) == "" {
			*d.field = d.value
		}
	}

	if c.RabbitMQConnectRetries == 0 {
		c.RabbitMQConnectRetries = constant.ConnectMaxRetries
	}

	if c.HistoryMaxLength == 0 {
		c.HistoryMaxLength = constant.DefaultHistoryMaxLength
	}
}

// loadConfig reads the environment through lib-commons, fills defaults and validates.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := libCommons.SetConfigFromEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env vars: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// monitorInterval returns CONNECTION_MONITOR_INTERVAL, already checked by Validate.
func (c *Config) monitorInterval() time.Duration {
	return parseDurationOr(c.ConnectionMonitorInterval, constant.ConnectionMonitorInterval)
}

// historyTTL returns HISTORY_TTL, already checked by Validate.
func (c *Config) historyTTL() time.Duration {
	return parseDurationOr(c.HistoryTTL, constant.DefaultHistoryTTL)
}

// mongoMaxPoolSize follows the manager: an unparsable value falls back to the default.
func (c *Config) mongoMaxPoolSize() uint64 {
	size, err := strconv.ParseUint(c.MongoMaxPoolSize, 10, 64)
	if err != nil || size == 0 {
		return constant.DefaultMongoMaxPoolSize
	}

	return size
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}

	return d
}

// validateDurationMin backs the duration_min tag: the field must parse and reach the minimum.
func validateDurationMin(fl validator.FieldLevel) bool {
	minimum, err := time.ParseDuration(fl.Param())
	if err != nil {
		return false
	}

	d, err := time.ParseDuration(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}

	return d >= minimum
}

// Validate checks the loaded configuration and reports every problem at once, by env var name.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("env")
	})

	if err := v.RegisterValidation("duration_min", validateDurationMin); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	msgs := make([]string, 0, len(vErrs))

	for _, fe := range vErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param()))
		case "duration_min":
			msgs = append(msgs, fmt.Sprintf("%s must be a duration of at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		}
	}

	return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
}

// InitServers wires every component and returns the Service ready to run.
func InitServers() (*Service, error) {
	return initService()
}

// logStartup prints the effective configuration without secrets.
func logStartup(cfg *Config, logger log.Logger) {
	logger.Infof("Starting %s (env=%s) on %s", cfg.OtelServiceName, cfg.EnvName, cfg.ServerAddress)
	logger.Infof("Default queue: %s, history: %d messages for %s", cfg.RabbitMQDefaultQueue, cfg.HistoryMaxLength, cfg.historyTTL())
}
