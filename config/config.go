package config

import (
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	Sweeper  SweeperConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// PaymentConfig holds PSP credentials. Webhook signature verification happens
// in the provider adapters before anything reaches the settlement core.
type PaymentConfig struct {
	WebhookSecret          string
	MercadoPagoAccessToken string
	NowPaymentsAPIKey      string
	PaymentExpiry          time.Duration
}

type SweeperConfig struct {
	Interval time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8090"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "fandreams:fandreams@tcp(localhost:3306)/fandreams?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "fandreams",
		},
		Payment: PaymentConfig{
			WebhookSecret:          os.Getenv("PAYMENT_WEBHOOK_SECRET"),
			MercadoPagoAccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
			NowPaymentsAPIKey:      os.Getenv("NOWPAYMENTS_API_KEY"),
			PaymentExpiry:          30 * time.Minute,
		},
		Sweeper: SweeperConfig{
			Interval: 5 * time.Minute,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
