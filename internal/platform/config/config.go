package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates service configuration so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string

	// ReserveTTL is the default attestation freshness window. Admins can
	// change it at runtime; this is only the boot value.
	ReserveTTL time.Duration

	// MaxPendingRequests bounds the set of tracked oracle requests.
	MaxPendingRequests int

	Kafka    KafkaConfig
	Redis    RedisConfig
	Postgres PostgresConfig
}

// KafkaConfig describes the oracle transport topics.
type KafkaConfig struct {
	Brokers       []string
	RequestTopic  string
	ResponseTopic string
	GroupID       string
}

// Enabled reports whether a Kafka transport is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// RedisConfig describes the optional Redis backing for shared stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig describes the optional Postgres backing for policy and
// event stores.
type PostgresConfig struct {
	DSN string
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("MINTGUARD_ADDR", ":8080"),
		JWTSigningKey:      envOr("MINTGUARD_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		ReserveTTL:         envDuration("MINTGUARD_RESERVE_TTL", 15*time.Minute),
		MaxPendingRequests: envInt("MINTGUARD_MAX_PENDING_REQUESTS", 1024),
		Kafka: KafkaConfig{
			RequestTopic:  envOr("MINTGUARD_KAFKA_REQUEST_TOPIC", "oracle.reserve.requests"),
			ResponseTopic: envOr("MINTGUARD_KAFKA_RESPONSE_TOPIC", "oracle.reserve.responses"),
			GroupID:       envOr("MINTGUARD_KAFKA_GROUP", "mintguard-intake"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("MINTGUARD_REDIS_URL"),
			PoolSize:     envInt("MINTGUARD_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("MINTGUARD_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("MINTGUARD_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("MINTGUARD_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("MINTGUARD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("MINTGUARD_POSTGRES_DSN"),
		},
	}

	if brokers := os.Getenv("MINTGUARD_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
