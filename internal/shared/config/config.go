package config

import (
	"time"

	"go-institute/internal/shared/connection"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	ServiceName string
	Port        string

	DB           connection.PostgresConfig
	DBMaxRetries int

	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	RateLimitPerSecond float64
	RateLimitBurst     int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	OTLPEndpoint string
	OTLPInsecure bool
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads .env (when present) and the process environment. Keys are the
// upper-case env names, e.g. DB_HOST.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("app_env", "development")
	v.SetDefault("service_name", "go-institute")
	v.SetDefault("port", "3000")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "institute")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_retries", 5)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("kafka_broker", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("rate_limit_per_second", 10.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("outbox_poll_interval", 3*time.Second)
	v.SetDefault("outbox_batch_size", 50)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_insecure", false)
	v.AutomaticEnv()

	return Config{
		AppEnv:      v.GetString("app_env"),
		ServiceName: v.GetString("service_name"),
		Port:        v.GetString("port"),
		DB: connection.PostgresConfig{
			Host:     v.GetString("db_host"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			Port:     v.GetString("db_port"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		DBMaxRetries:       v.GetInt("db_max_retries"),
		RedisAddr:          v.GetString("redis_addr"),
		KafkaBroker:        v.GetString("kafka_broker"),
		JWTSecret:          v.GetString("jwt_secret"),
		RateLimitPerSecond: v.GetFloat64("rate_limit_per_second"),
		RateLimitBurst:     v.GetInt("rate_limit_burst"),
		OutboxPollInterval: v.GetDuration("outbox_poll_interval"),
		OutboxBatchSize:    v.GetInt("outbox_batch_size"),
		OTLPEndpoint:       v.GetString("otel_exporter_otlp_endpoint"),
		OTLPInsecure:       v.GetBool("otel_exporter_otlp_insecure"),
	}
}
