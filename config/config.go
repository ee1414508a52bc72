package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Checkout   CheckoutConfig
}

type ServerConfig struct {
	Port              string
	Env               string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	Issuer       string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// CheckoutConfig configures the hosted-checkout payment provider. The
// webhook secret signs the push channel; an empty secret disables
// verification (local development only).
type CheckoutConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:              env("PORT", "8080"),
			Env:               env("APP_ENV", "development"),
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "ridepool:ridepool@tcp(localhost:3306)/ridepool?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: env("JWT_ACCESS_SECRET", "change-me-in-production"),
			Issuer:       env("JWT_ISSUER", "ridepool"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    env("CLOUDINARY_API_KEY", ""),
			APISecret: env("CLOUDINARY_API_SECRET", ""),
		},
		Checkout: CheckoutConfig{
			BaseURL:       env("CHECKOUT_BASE_URL", ""),
			APIKey:        env("CHECKOUT_API_KEY", ""),
			WebhookSecret: env("CHECKOUT_WEBHOOK_SECRET", ""),
			Currency:      env("CHECKOUT_CURRENCY", "USD"),
			SuccessURL:    env("CHECKOUT_SUCCESS_URL", "https://ridepool.example.com/payment/success"),
			CancelURL:     env("CHECKOUT_CANCEL_URL", "https://ridepool.example.com/payment/cancel"),
		},
	}
}

func env(key, fallback string) string {
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
