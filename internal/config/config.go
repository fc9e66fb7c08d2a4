package config

import (
	"fmt"
	"os"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	LogLevel       string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	JWTSecret      string
	AllowedOrigins []string
}

// Load reads configuration from the environment. The JWT signing secret and
// the MongoDB URI have no fallback; the service refuses to start without them.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "blogify"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "blog-images"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		JWTSecret:      getenv("JWT_SECRET", ""),
		AllowedOrigins: []string{
			getenv("CLIENT_ORIGIN", "http://localhost:5173"),
			"http://localhost:3000",
		},
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
