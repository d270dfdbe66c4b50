package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalogue/internal/config"
)

func TestNew(t *testing.T) {
	type Config struct {
		Log   config.Log
		HTTP  config.HTTP
		Kafka config.Kafka
		Auth  config.Auth
	}

	t.Run("Should apply defaults and parse required values", func(t *testing.T) {
		t.Setenv("KAFKA_ADDRESSES", "broker-1:9092,broker-2:9092")
		t.Setenv("AUTH_JWT_SECRET", "secret")
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Addresses)
		assert.Equal(t, "product-topic", cfg.Kafka.ProductTopic)
		assert.Equal(t, "notification-service", cfg.Kafka.Group)
		assert.Equal(t, "roles", cfg.Auth.RolesClaim)
	})

	t.Run("Should fail when a required value is missing", func(t *testing.T) {
		t.Setenv("KAFKA_ADDRESSES", "broker-1:9092")
		t.Setenv("AUTH_JWT_SECRET", "")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should reject an unknown log format", func(t *testing.T) {
		t.Setenv("KAFKA_ADDRESSES", "broker-1:9092")
		t.Setenv("AUTH_JWT_SECRET", "secret")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}
