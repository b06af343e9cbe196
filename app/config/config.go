package config

import (
	"fmt"
	"os"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port   string
	DB     PostgresConfig
	Stripe StripeConfig
	Clerk  ClerkConfig
	Media  MediaConfig
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Database string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type ClerkConfig struct {
	SecretKey     string
	WebhookSecret string
}

type MediaConfig struct {
	Bucket string
	Region string
	// BaseURL overrides the default public object URL prefix, e.g. for a CDN.
	BaseURL string
}

func LoadConfig() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "usd"
	}

	cfg := &Config{
		Port: port,
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
			Database: os.Getenv("POSTGRES_DB"),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:      currency,
		},
		Clerk: ClerkConfig{
			SecretKey:     os.Getenv("CLERK_SECRET_KEY"),
			WebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		},
		Media: MediaConfig{
			Bucket:  os.Getenv("MEDIA_BUCKET"),
			Region:  os.Getenv("MEDIA_REGION"),
			BaseURL: os.Getenv("MEDIA_BASE_URL"),
		},
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("POSTGRES_URL must be set")
	}

	return cfg, nil
}
