package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all runtime configuration so main stays lean.
type Config struct {
	Server   Server
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Geocoder GeocoderConfig
	Submit   SubmitConfig
	Delivery DeliveryConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// PostgresConfig holds the connection string for the relational store.
// Empty URL means in-memory stores are used.
type PostgresConfig struct {
	URL string
}

// RedisConfig holds Redis connection settings. Empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig selects the broker-backed queue transport. Empty Brokers keeps
// the in-process lanes.
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// GeocoderConfig points at the external geocoding collaborator.
type GeocoderConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SubmitConfig points at the per-chamber submission endpoints. The two
// chambers run distinct protocols and are configured independently.
type SubmitConfig struct {
	UpperBaseURL string
	UpperAPIKey  string
	LowerBaseURL string
	LowerToken   string
	Timeout      time.Duration
}

// DeliveryConfig bounds the fan-out worker pools and retry behavior.
type DeliveryConfig struct {
	QueueDriver      string // "memory" or "kafka"
	UpperLaneWorkers int
	LowerLaneWorkers int
	LaneBuffer       int
	MaxAttempts      int
	RetryBaseDelay   time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envOr("HERALD_ADDR", ":8080"),
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			GroupID: envOr("KAFKA_GROUP_ID", "herald-delivery"),
		},
		Geocoder: GeocoderConfig{
			BaseURL: envOr("GEOCODER_BASE_URL", "http://localhost:9090"),
			Timeout: envDuration("GEOCODER_TIMEOUT", 5*time.Second),
		},
		Submit: SubmitConfig{
			UpperBaseURL: envOr("SUBMIT_UPPER_BASE_URL", "http://localhost:9091"),
			UpperAPIKey:  os.Getenv("SUBMIT_UPPER_API_KEY"),
			LowerBaseURL: envOr("SUBMIT_LOWER_BASE_URL", "http://localhost:9092"),
			LowerToken:   os.Getenv("SUBMIT_LOWER_TOKEN"),
			Timeout:      envDuration("SUBMIT_TIMEOUT", 10*time.Second),
		},
		Delivery: DeliveryConfig{
			QueueDriver:      envOr("QUEUE_DRIVER", "memory"),
			UpperLaneWorkers: envInt("UPPER_LANE_WORKERS", 4),
			LowerLaneWorkers: envInt("LOWER_LANE_WORKERS", 4),
			LaneBuffer:       envInt("LANE_BUFFER", 256),
			MaxAttempts:      envInt("DELIVERY_MAX_ATTEMPTS", 3),
			RetryBaseDelay:   envDuration("DELIVERY_RETRY_BASE_DELAY", 200*time.Millisecond),
		},
	}
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

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
