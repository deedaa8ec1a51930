package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"SHOPIFY_SHOP_URL":     "https://bakery.myshopify.com",
		"SHOPIFY_ACCESS_TOKEN": "shpat_test",
		"DATABASE_URI":         "postgres://localhost/orders",
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, env(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.RunAddress)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, "2023-07", cfg.APIVersion)
	assert.Equal(t, 24*time.Hour, cfg.Lookback)
	assert.Equal(t, 250, cfg.PageLimit)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.CheckpointDir)
	assert.False(t, cfg.Once)
}

func TestParse_EnvOverridesFlags(t *testing.T) {
	m := requiredEnv()
	m["RUN_ADDRESS"] = ":9090"
	m["SYNC_LOOKBACK"] = "48h"
	m["SYNC_PAGE_LIMIT"] = "100"
	m["KAFKA_BROKERS"] = "localhost:9092"
	m["CHECKPOINT_DIR"] = "/var/lib/ordersync"

	cfg, err := Parse([]string{"-a", ":7070", "-lookback", "1h", "-once"}, env(m))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.RunAddress)
	assert.Equal(t, 48*time.Hour, cfg.Lookback)
	assert.Equal(t, 100, cfg.PageLimit)
	assert.Equal(t, "localhost:9092", cfg.KafkaBrokers)
	assert.Equal(t, "/var/lib/ordersync", cfg.CheckpointDir)
	assert.True(t, cfg.Once)
}

func TestParse_FlagsOnly(t *testing.T) {
	cfg, err := Parse([]string{
		"-d", "file.db", "-driver", "sqlite",
		"-shop", "https://bakery.myshopify.com",
	}, env(map[string]string{"SHOPIFY_ACCESS_TOKEN": "shpat_test"}))
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.DatabaseURI)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
}

func TestParse_MissingRequired(t *testing.T) {
	for _, key := range []string{"SHOPIFY_SHOP_URL", "SHOPIFY_ACCESS_TOKEN", "DATABASE_URI"} {
		t.Run(key, func(t *testing.T) {
			m := requiredEnv()
			delete(m, key)
			_, err := Parse(nil, env(m))
			require.ErrorIs(t, err, ErrMissingConfig)
		})
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	m := requiredEnv()
	m["SYNC_INTERVAL"] = "soon"
	_, err := Parse(nil, env(m))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNC_INTERVAL")
}
