package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

const envPrefix = "SALES"

// Config описывает настройки запуска приложения.
type Config struct {
	GRPCAddr    string
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	RedisAddr       string
	ProductCacheTTL time.Duration

	IdempotencyTTL              time.Duration
	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает значения по умолчанию: memory-хранилище без Redis.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:                    ":50051",
		HTTPAddr:                    ":8080",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		ProductCacheTTL:             5 * time.Minute,
		IdempotencyTTL:              24 * time.Hour,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
		LogLevel:                    "info",
		LogFormat:                   "text",
		ShutdownTimeout:             5 * time.Second,
	}
}

// LoadConfig читает настройки из переменных окружения SALES_* и, если задан
// SALES_CONFIG_FILE, из файла. Окружение имеет приоритет над файлом.
func LoadConfig() (Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (Config, error) {
	defaults := DefaultConfig()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("grpc_addr", defaults.GRPCAddr)
	v.SetDefault("http_addr", defaults.HTTPAddr)
	v.SetDefault("metrics_addr", defaults.MetricsAddr)
	v.SetDefault("storage_driver", defaults.StorageDriver)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_auto_migrate", defaults.PostgresAutoMigrate)
	v.SetDefault("redis_addr", "")
	v.SetDefault("product_cache_ttl", defaults.ProductCacheTTL)
	v.SetDefault("idempotency_ttl", defaults.IdempotencyTTL)
	v.SetDefault("idempotency_cleanup_interval", defaults.IdempotencyCleanupInterval)
	v.SetDefault("idempotency_cleanup_batch_size", defaults.IdempotencyCleanupBatchSize)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := Config{
		GRPCAddr:                    v.GetString("grpc_addr"),
		HTTPAddr:                    v.GetString("http_addr"),
		MetricsAddr:                 v.GetString("metrics_addr"),
		StorageDriver:               strings.ToLower(strings.TrimSpace(v.GetString("storage_driver"))),
		PostgresDSN:                 strings.TrimSpace(v.GetString("postgres_dsn")),
		PostgresAutoMigrate:         v.GetBool("postgres_auto_migrate"),
		RedisAddr:                   strings.TrimSpace(v.GetString("redis_addr")),
		ProductCacheTTL:             v.GetDuration("product_cache_ttl"),
		IdempotencyTTL:              v.GetDuration("idempotency_ttl"),
		IdempotencyCleanupInterval:  v.GetDuration("idempotency_cleanup_interval"),
		IdempotencyCleanupBatchSize: v.GetInt("idempotency_cleanup_batch_size"),
		LogLevel:                    v.GetString("log_level"),
		LogFormat:                   v.GetString("log_format"),
		ShutdownTimeout:             v.GetDuration("shutdown_timeout"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres_dsn is required for postgres storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver: %q", c.StorageDriver))
	}
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc_addr is required"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}
