package config

import (
	"os"
	"strconv"
	"time"
)

// AggregatorConfig describes one external job-search API. Built once at load
// time and never mutated afterwards. RateLimitPerMinute/PerDay are advisory
// ceilings for the caller's scheduler; nothing here enforces them.
type AggregatorConfig struct {
	Name               string
	AppID              string
	AppKey             string
	BaseURL            string
	Country            string
	RateLimitPerMinute int
	RateLimitPerDay    int
	Enabled            bool
}

type Config struct {
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	OTLPCollectorURL string

	AdapterTimeout       time.Duration
	HousekeepingInterval time.Duration
	RetentionWindow      time.Duration

	Adzuna AggregatorConfig
	Jooble AggregatorConfig
}

// LoadConfig reads the environment once at process start. Every value has a
// default except DATABASE_URL, which the store layer will fail on at connect
// time if unset.
func LoadConfig() (*Config, error) {
	config := &Config{
		DatabaseURL: getEnvString("DATABASE_URL", ""),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 1800*time.Second),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		OTLPCollectorURL: getEnvString("OTLP_COLLECTOR_URL", ""),

		AdapterTimeout:       getEnvDuration("ADAPTER_TIMEOUT", 15*time.Second),
		HousekeepingInterval: getEnvDuration("HOUSEKEEPING_INTERVAL", 24*time.Hour),
		RetentionWindow:      getEnvDuration("RETENTION_WINDOW", 30*24*time.Hour),

		Adzuna: AggregatorConfig{
			Name:               "adzuna",
			AppID:              getEnvString("ADZUNA_APP_ID", ""),
			AppKey:             getEnvString("ADZUNA_APP_KEY", ""),
			BaseURL:            getEnvString("ADZUNA_BASE_URL", "https://api.adzuna.com/v1/api/jobs"),
			Country:            getEnvString("ADZUNA_COUNTRY", "us"),
			RateLimitPerMinute: getEnvInt("ADZUNA_RATE_LIMIT_PER_MINUTE", 25),
			RateLimitPerDay:    getEnvInt("ADZUNA_RATE_LIMIT_PER_DAY", 250),
			Enabled:            getEnvBool("ADZUNA_ENABLED", true),
		},
		Jooble: AggregatorConfig{
			Name:               "jooble",
			AppKey:             getEnvString("JOOBLE_API_KEY", ""),
			BaseURL:            getEnvString("JOOBLE_BASE_URL", "https://jooble.org/api"),
			RateLimitPerMinute: getEnvInt("JOOBLE_RATE_LIMIT_PER_MINUTE", 60),
			RateLimitPerDay:    getEnvInt("JOOBLE_RATE_LIMIT_PER_DAY", 500),
			Enabled:            getEnvBool("JOOBLE_ENABLED", true),
		},
	}

	return config, nil
}

// Aggregators returns the sources in declaration order. This order is what
// makes first-seen-wins deduplication deterministic, so it is fixed here
// rather than left to map iteration.
func (c *Config) Aggregators() []AggregatorConfig {
	return []AggregatorConfig{c.Adzuna, c.Jooble}
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
