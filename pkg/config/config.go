package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort int

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte
	JWTExpire time.Duration

	CORSOrigins []string

	KafkaBrokers []string
	AMQPURL      string
	AMQPExchange string

	RedisAddr       string
	ProductCacheTTL time.Duration

	SeedCatalog        bool
	AllowGuestCheckout bool
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTExpire: EnvDurationDefault("JWT_EXPIRE", 30*24*time.Hour),

		CORSOrigins: CSV(EnvDefault("CORS_ORIGIN", "*")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: EnvDefault("AMQP_EXCHANGE", "storefront.events"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		ProductCacheTTL: EnvDurationDefault("PRODUCT_CACHE_TTL", 5*time.Minute),

		SeedCatalog:        EnvBoolDefault("SEED_CATALOG", false),
		AllowGuestCheckout: EnvBoolDefault("ALLOW_GUEST_CHECKOUT", false),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvDurationDefault accepts Go durations ("15m", "720h") and whole days ("30d").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
