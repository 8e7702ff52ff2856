package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mcoot/tourney/internal/factory"
	redisstorage "github.com/mcoot/tourney/internal/storage/redis"
	sqlitestorage "github.com/mcoot/tourney/internal/storage/sqlite"
)

// Config holds CLI configuration
type Config struct {
	Storage    string
	RedisURL   string
	SQLitePath string
	LogLevel   string
	Output     string
}

// LoadEnvFile adds the variables in path to the environment without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// DefaultConfig returns a Config populated from the environment, after
// loading an optional .env file from the working directory
func DefaultConfig() (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	return envConfig(), nil
}

func envConfig() *Config {
	return &Config{
		Storage:    getEnvOrDefault("TOURNEY_STORAGE", factory.StorageTypeMemory),
		RedisURL:   getEnvOrDefault("TOURNEY_REDIS_URL", redisstorage.DefaultConfig().URL),
		SQLitePath: getEnvOrDefault("TOURNEY_SQLITE_PATH", "tourney.db"),
		LogLevel:   getEnvOrDefault("TOURNEY_LOG_LEVEL", "warn"),
		Output:     getEnvOrDefault("TOURNEY_OUTPUT", "text"),
	}
}

// NewLogger builds a logger writing to w at the configured level. JSON
// output gets JSON logs.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Output == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// FactoryConfig translates the CLI settings into application factory settings
func (c *Config) FactoryConfig(logger *slog.Logger) (factory.Config, error) {
	fc := factory.Config{
		Logger:      logger,
		StorageType: strings.ToLower(c.Storage),
	}

	switch fc.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypeSQLite:
		sqliteCfg := sqlitestorage.DefaultConfig()
		sqliteCfg.DSN = c.SQLitePath + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
		fc.SQLiteConfig = &sqliteCfg
	default:
		return factory.Config{}, fmt.Errorf("unknown storage %q: must be memory, redis or sqlite", c.Storage)
	}
	return fc, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
