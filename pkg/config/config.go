package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Engine
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// EngineConfig holds evaluation engine configuration
type EngineConfig struct {
	// Version stamped onto snapshots and outcomes
	Version string

	// Snapshot build
	BuildLockTTL     time.Duration
	SnapshotCacheTTL time.Duration
	BuildWorkers     int

	// Outcome evaluation windows, per profile
	// 프로파일별 바 수는 명시적으로 고정 — 추론 금지
	OutcomeWindows OutcomeWindowConfig

	// Playbook threshold override file (optional)
	PlaybookConfigPath string

	// Market data supplier rate limit (requests per second)
	SupplierRateLimit float64
	SupplierBurst     int
}

// OutcomeWindowConfig pins the bar-count window and the candle timeframe each
// profile is resolved against. A setup whose timeframe does not match the
// configured one for its profile is a configuration error, not a silent
// fallback.
type OutcomeWindowConfig struct {
	ScalpBars    int
	IntradayBars int
	SwingBars    int
	PositionBars int

	ScalpTimeframe    string
	IntradayTimeframe string
	SwingTimeframe    string
	PositionTimeframe string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Engine: EngineConfig{
			Version:          getEnv("ENGINE_VERSION", "0.3.0"),
			BuildLockTTL:     getEnvAsDuration("SNAPSHOT_BUILD_LOCK_TTL", "5m"),
			SnapshotCacheTTL: getEnvAsDuration("SNAPSHOT_CACHE_TTL", "10m"),
			BuildWorkers:     getEnvAsInt("SNAPSHOT_BUILD_WORKERS", 8),
			OutcomeWindows: OutcomeWindowConfig{
				ScalpBars:         getEnvAsInt("OUTCOME_WINDOW_SCALP", 16),
				IntradayBars:      getEnvAsInt("OUTCOME_WINDOW_INTRADAY", 12),
				SwingBars:         getEnvAsInt("OUTCOME_WINDOW_SWING", 10),
				PositionBars:      getEnvAsInt("OUTCOME_WINDOW_POSITION", 30),
				ScalpTimeframe:    getEnv("OUTCOME_TF_SCALP", "15m"),
				IntradayTimeframe: getEnv("OUTCOME_TF_INTRADAY", "1H"),
				SwingTimeframe:    getEnv("OUTCOME_TF_SWING", "1D"),
				PositionTimeframe: getEnv("OUTCOME_TF_POSITION", "1D"),
			},
			PlaybookConfigPath: getEnv("PLAYBOOK_CONFIG_PATH", ""),
			SupplierRateLimit:  getEnvAsFloat("SUPPLIER_RATE_LIMIT", 20),
			SupplierBurst:      getEnvAsInt("SUPPLIER_BURST", 10),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	w := c.Engine.OutcomeWindows
	for _, pair := range []struct {
		profile string
		bars    int
	}{
		{"scalp", w.ScalpBars},
		{"intraday", w.IntradayBars},
		{"swing", w.SwingBars},
		{"position", w.PositionBars},
	} {
		if pair.bars <= 0 {
			return fmt.Errorf("outcome window for %s profile must be positive, got %d", pair.profile, pair.bars)
		}
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
