package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	StoreBackend string // "postgres", "bolt" or "memory"
	DatabaseURL  string
	BoltPath     string
	JWTSecretKey string
	ServerPort   int

	// Broadcast hub tuning
	RingBufferSize int
	QueueSize      int
	PollTimeout    time.Duration

	WorkerPoolSize int
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBackend: getEnv("STORE_BACKEND", "postgres"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		BoltPath:     getEnv("BOLT_PATH", "matchday.db"),
		JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),
	}

	switch cfg.StoreBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case "bolt", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if cfg.RingBufferSize, err = getEnvInt("RING_BUFFER_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = getEnvInt("SUBSCRIBER_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}
	pollSecs, err := getEnvInt("POLL_TIMEOUT_SECONDS", 25)
	if err != nil {
		return nil, err
	}
	cfg.PollTimeout = time.Duration(pollSecs) * time.Second

	if cfg.WorkerPoolSize, err = getEnvInt("WORKER_POOL_SIZE", 8); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
