package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	RunAddress     string
	DatabaseURI    string
	DatabaseDriver string

	ShopURL     string
	AccessToken string
	APIVersion  string

	SyncInterval time.Duration
	Lookback     time.Duration
	PageLimit    int
	FetchTimeout time.Duration
	StoreTimeout time.Duration

	JWTSecret         string
	AdminPasswordHash string

	KafkaBrokers  string
	KafkaTopic    string
	CheckpointDir string

	Once bool
}

// New reads the process flags and environment.
func New() (*Config, error) {
	return Parse(os.Args[1:], os.LookupEnv)
}

// Parse applies flags first and lets environment variables override them.
func Parse(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("ordersync", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "localhost:8080", "server address and port")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	fs.StringVar(&cfg.DatabaseDriver, "driver", "pgx", "database driver: pgx or sqlite")
	fs.StringVar(&cfg.ShopURL, "shop", "", "shop base URL, e.g. https://example.myshopify.com")
	fs.StringVar(&cfg.APIVersion, "api-version", "2023-07", "Admin API version")
	fs.DurationVar(&cfg.SyncInterval, "interval", 30*time.Minute, "time between scheduled syncs, 0 disables the scheduler")
	fs.DurationVar(&cfg.Lookback, "lookback", 24*time.Hour, "fetch orders created within this window")
	fs.IntVar(&cfg.PageLimit, "limit", 250, "orders requested per fetch, at most 250")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 30*time.Second, "timeout of one fetch request")
	fs.DurationVar(&cfg.StoreTimeout, "store-timeout", 10*time.Second, "timeout of one store call")
	fs.StringVar(&cfg.JWTSecret, "s", "super-secret-jwt-key", "jwt signing key")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "ordersync.orders", "topic for order events")
	fs.StringVar(&cfg.CheckpointDir, "checkpoint-dir", "", "directory of the persisted since_id cursor")
	fs.BoolVar(&cfg.Once, "once", false, "run a single sync and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok {
			return value
		}
		return fallback
	}

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.DatabaseURI = getEnv("DATABASE_URI", cfg.DatabaseURI)
	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.ShopURL = getEnv("SHOPIFY_SHOP_URL", cfg.ShopURL)
	cfg.AccessToken = getEnv("SHOPIFY_ACCESS_TOKEN", cfg.AccessToken)
	cfg.APIVersion = getEnv("SHOPIFY_API_VERSION", cfg.APIVersion)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)
	cfg.KafkaBrokers = getEnv("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.CheckpointDir = getEnv("CHECKPOINT_DIR", cfg.CheckpointDir)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SYNC_INTERVAL", &cfg.SyncInterval},
		{"SYNC_LOOKBACK", &cfg.Lookback},
		{"FETCH_TIMEOUT", &cfg.FetchTimeout},
		{"STORE_TIMEOUT", &cfg.StoreTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup("SYNC_PAGE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse SYNC_PAGE_LIMIT: %w", err)
		}
		cfg.PageLimit = n
	}

	if cfg.ShopURL == "" || cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: SHOPIFY_SHOP_URL and SHOPIFY_ACCESS_TOKEN are required", ErrMissingConfig)
	}
	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("%w: DATABASE_URI is required", ErrMissingConfig)
	}

	return cfg, nil
}
