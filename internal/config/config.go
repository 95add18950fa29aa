package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port            string
	StoreBackend    string
	MongoURI        string
	MongoDB         string
	PostgresDSN     string
	RedisAddr       string
	RedisPassword   string
	UserCacheTTL    time.Duration
	AssetsDir       string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
	LogLevel        string
	StoreTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads a .env file when present and then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getenv("PORT", "3000"),
		StoreBackend:    strings.ToLower(getenv("STORE_BACKEND", "mongo")),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "exercise_tracker"),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		UserCacheTTL:    getDuration("USER_CACHE_TTL", time.Hour),
		AssetsDir:       getenv("ASSETS_DIR", "."),
		MinioEndpoint:   getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getenv("MINIO_BUCKET", "exercise-tracker-assets"),
		MinioUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		LogLevel:        getenv("LOG_LEVEL", "info"),
		StoreTimeout:    getDuration("STORE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
