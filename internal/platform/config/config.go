// Package config builds runtime configuration from the environment so main
// stays lean. Infrastructure backends are optional: an empty URL means the
// in-process fallback is used.
package config

import (
	"os"
	"strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// DatabaseURL enables the Postgres stores when set.
	DatabaseURL string
	// RedisURL enables the Redis file store when set.
	RedisURL string
	// KafkaBrokers enables the Kafka notifier when non-empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("DEALDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "dealdesk.notifications"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
	}
}
