package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment    string
	Storage        string
	DBDSN          string
	HTTPAddr       string
	LockTimeout    time.Duration
	RequestTimeout time.Duration
	BookRateRPS    float64
	BookRateBurst  int
	AuditInterval  time.Duration
	TelegramToken  string
	SeedDemo       bool
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из переданного источника переменных окружения
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Environment:   getenv("ENV"),
		Storage:       getenv("STORAGE"),
		DBDSN:         getenv("DB_DSN"),
		HTTPAddr:      getenv("HTTP_ADDR"),
		TelegramToken: getenv("TELEGRAM_TOKEN"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Storage == "" {
		cfg.Storage = StoragePostgres
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":5000"
	}

	var err error
	if cfg.LockTimeout, err = durationVar(getenv, "LOCK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = durationVar(getenv, "REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AuditInterval, err = durationVar(getenv, "AUDIT_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.BookRateRPS, err = floatVar(getenv, "BOOK_RATE_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.BookRateBurst, err = intVar(getenv, "BOOK_RATE_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.SeedDemo, err = boolVar(getenv, "SEED_DEMO", false); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	// lock_timeout в PostgreSQL задаётся в миллисекундах, а 0 отключает ограничение
	if cfg.LockTimeout < time.Millisecond {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be at least 1ms, got %s", cfg.LockTimeout)
	}

	// С нулевым burst лимитер не пропустит ни одного запроса
	if cfg.BookRateRPS > 0 && cfg.BookRateBurst < 1 {
		return nil, fmt.Errorf("BOOK_RATE_BURST must be at least 1 when BOOK_RATE_RPS > 0, got %d", cfg.BookRateBurst)
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// IsProduction сообщает, запущены ли мы в продакшене
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func floatVar(getenv func(string) string, key string, def float64) (float64, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func boolVar(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
