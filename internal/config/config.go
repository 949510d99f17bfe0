package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName string
	API     APIConfig
	Storage StorageConfig
	Redis   RedisConfig
	Buffer  BufferConfig
	Refresh RefreshConfig
	Logger  LoggerConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	Backend  string
	FilePath string
	BoltPath string
}

type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	Namespace string
}

type BufferConfig struct {
	Enabled      bool
	Path         string
	SyncInterval time.Duration
	MaxRetry     int
}

type RefreshConfig struct {
	Interval time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the client can run with zero setup.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	dataDir := getString("DATA_DIR", defaultDataDir())

	cfg := &Config{
		AppName: getString("APP_NAME", "ridepool"),
		API: APIConfig{
			BaseURL: getString("API_BASE_URL", "https://api.ridepool.app/"),
			Timeout: getDuration("API_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend:  getString("STORAGE_BACKEND", BackendFile),
			FilePath: getString("SESSION_FILE_PATH", filepath.Join(dataDir, "user.json")),
			BoltPath: getString("BOLTDB_PATH", filepath.Join(dataDir, "session.db")),
		},
		Redis: RedisConfig{
			URL:       getString("REDIS_URL", "redis://localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getInt("REDIS_DB", 0),
			Namespace: getString("REDIS_NAMESPACE", "ridepool"),
		},
		Buffer: BufferConfig{
			Enabled:      getBool("BUFFER_ENABLED", true),
			Path:         getString("BUFFER_PATH", filepath.Join(dataDir, "pending.db")),
			SyncInterval: getDuration("SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:     getInt("MAX_RETRY_ATTEMPTS", 3),
		},
		Refresh: RefreshConfig{
			Interval: getDuration("AUTO_REFRESH_INTERVAL", 0),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
	}

	switch cfg.Storage.Backend {
	case BackendFile, BackendBolt, BackendRedis, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".ridepool")
	}
	return filepath.Join(os.TempDir(), "ridepool")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
