// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerAddress:             ":4000",
		RabbitURI:                 "amqp",
		RabbitMQHost:              "localhost",
		RabbitMQPortAMQP:          "5672",
		RabbitMQUser:              "guest",
		RabbitMQPass:              "guest",
		RabbitMQDefaultQueue:      "hello",
		RabbitMQConnectRetries:    5,
		ConnectionMonitorInterval: "10s",
		MongoURI:                  "mongodb",
		MongoDBHost:               "localhost",
		MongoDBName:               "consumer",
		RedisHost:                 "localhost:6379",
		HistoryMaxLength:          100,
		HistoryTTL:                "24h",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains []string
	}{
		{
			name:   "Success - valid configuration",
			mutate: func(_ *Config) {},
		},
		{
			name: "Error - missing broker host",
			mutate: func(c *Config) {
				c.RabbitMQHost = ""
			},
			errContains: []string{"RABBITMQ_HOST is required"},
		},
		{
			name: "Error - every missing field is reported",
			mutate: func(c *Config) {
				c.MongoDBHost = ""
				c.RedisHost = ""
			},
			errContains: []string{"MONGO_HOST is required", "REDIS_HOST is required"},
		},
		{
			name: "Error - default queue too long",
			mutate: func(c *Config) {
				c.RabbitMQDefaultQueue = string(make([]byte, 256))
			},
			errContains: []string{"RABBITMQ_DEFAULT_QUEUE must be at most 255 characters long"},
		},
		{
			name: "Error - history length below one",
			mutate: func(c *Config) {
				c.HistoryMaxLength = -1
			},
			errContains: []string{"HISTORY_MAX_LENGTH is invalid"},
		},
		{
			name: "Error - monitor interval too short",
			mutate: func(c *Config) {
				c.ConnectionMonitorInterval = "1ms"
			},
			errContains: []string{"CONNECTION_MONITOR_INTERVAL must be a duration of at least 1s"},
		},
		{
			name: "Error - history ttl is not a duration",
			mutate: func(c *Config) {
				c.HistoryTTL = "a day"
			},
			errContains: []string{"HISTORY_TTL must be a duration of at least 1s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.errContains) == 0 {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")

			for _, want := range tt.errContains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

// NOTE: Cannot use t.Parallel() because of t.Setenv.
func TestLoadConfig_DefaultsFromEnv(t *testing.T) {
	t.Setenv("RABBITMQ_HOST", "rabbit.internal")
	t.Setenv("HISTORY_TTL", "90m")
	t.Setenv("RABBITMQ_DEFAULT_QUEUE", "")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "rabbit.internal", cfg.RabbitMQHost)
	assert.Equal(t, "hello", cfg.RabbitMQDefaultQueue)
	assert.Equal(t, 90*time.Minute, cfg.historyTTL())
	assert.Equal(t, 10*time.Second, cfg.monitorInterval())
	assert.Equal(t, ":4000", cfg.ServerAddress)
	assert.Equal(t, 100, cfg.HistoryMaxLength)
	assert.Equal(t, 5, cfg.RabbitMQConnectRetries)
	assert.Equal(t, uint64(100), cfg.mongoMaxPoolSize())
	assert.Empty(t, cfg.MessageLogTemplate)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("CONNECTION_MONITOR_INTERVAL", "often")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONNECTION_MONITOR_INTERVAL")
}

func TestConfig_MongoMaxPoolSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want uint64
	}{
		{raw: "25", want: 25},
		{raw: "", want: 100},
		{raw: "lots", want: 100},
		{raw: "0", want: 100},
	}

	for _, tt := range tests {
		cfg := &Config{MongoMaxPoolSize: tt.raw}
		assert.Equal(t, tt.want, cfg.mongoMaxPoolSize(), "raw=%q", tt.raw)
	}
}
