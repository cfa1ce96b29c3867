package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the api and worker processes read from the
// environment.
type Config struct {
	Port        string
	MetricsPort string
	AppURL      string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	QueueStream   string
	QueueGroup    string

	MongoURI      string
	MongoDatabase string

	ShopifyAPIKey    string
	ShopifyAPISecret string
}

// Load reads configuration from the environment, after loading .env if one
// is present. ShopifyAPISecret is required: without it neither signature
// verification nor OAuth can work.
func Load() (*Config, error) {
	// .env is a development convenience, absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		MetricsPort:      getEnv("METRICS_PORT", "9091"),
		AppURL:           getEnv("APP_URL", "http://localhost:8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/insights?sslmode=disable"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		QueueStream:      getEnv("QUEUE_STREAM", "shopify_webhooks"),
		QueueGroup:       getEnv("QUEUE_GROUP", "workers"),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGODB_DATABASE", "insights"),
		ShopifyAPIKey:    os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret: os.Getenv("SHOPIFY_API_SECRET"),
	}

	if cfg.ShopifyAPISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
