package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token verification settings. Tokens are issued by the
// identity service; this service only verifies them.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds the lock, cache and rate limiter backend settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PaymentConfig holds vendor credentials and the webhook shared secret.
type PaymentConfig struct {
	WebhookSecret string
	StripeKey     string
	BillplzKey    string
	IPay88Key     string
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	RateLimitPerMin int
	DBConfig        DatabaseConfig
	JWTConfig       JWTConfig
	KafkaConfig     KafkaConfig
	RedisConfig     RedisConfig
	PaymentConfig   PaymentConfig
}

// Load reads configuration from RESERVATION_-prefixed environment variables,
// falling back to development defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RESERVATION")
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("RATE_LIMIT_PER_MIN", 300)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "serai_reservations")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "dev-secret-change-me")

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "serai.")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("PAYMENT_WEBHOOK_SECRET", "dev-webhook-secret")
	v.SetDefault("STRIPE_API_KEY", "")
	v.SetDefault("BILLPLZ_API_KEY", "")
	v.SetDefault("IPAY88_API_KEY", "")

	cfg := &ServiceConfig{
		Port:            ":" + v.GetString("SERVICE_PORT"),
		AppEnv:          v.GetString("APP_ENV"),
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		PaymentConfig: PaymentConfig{
			WebhookSecret: v.GetString("PAYMENT_WEBHOOK_SECRET"),
			StripeKey:     v.GetString("STRIPE_API_KEY"),
			BillplzKey:    v.GetString("BILLPLZ_API_KEY"),
			IPay88Key:     v.GetString("IPAY88_API_KEY"),
		},
	}

	if cfg.AppEnv == "production" && cfg.JWTConfig.Secret == "dev-secret-change-me" {
		return nil, fmt.Errorf("RESERVATION_JWT_SECRET must be set in production")
	}

	return cfg, nil
}
