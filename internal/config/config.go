package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	RateLimit RateLimitConfig
}

type DBConfig struct {
	// Path is the SQLite database file.
	Path string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisConfig is optional; an empty Address disables the retrieval cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
	// File enables a rotating JSON log file next to stdout when set.
	File string
}

type RateLimitConfig struct {
	SubmissionsPerMinute int
	Burst                int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "data_quality_index.db")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 20)
	v.SetDefault("server.write_timeout", 20)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.file", "")
	v.SetDefault("rate_limit.submissions_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)
}

// LoadConfig reads config.yaml when one is found and falls back to defaults otherwise.
// Environment variables override file values (DB_PATH, SERVER_PORT, REDIS_ADDRESS, ...).
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Path: v.GetString("db.path"),
		},
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
			File:  v.GetString("logger.file"),
		},
		RateLimit: RateLimitConfig{
			SubmissionsPerMinute: v.GetInt("rate_limit.submissions_per_minute"),
			Burst:                v.GetInt("rate_limit.burst"),
		},
	}

	if cfg.DB.Path == "" {
		return nil, fmt.Errorf("db.path must not be empty")
	}
	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("invalid server.port: %d", cfg.Server.Port)
	}
	return cfg, nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Address != ""
}

// GetDSN returns the SQLite connection string for the configured database file.
func (c *Config) GetDSN() string {
	return SQLiteDSN(c.DB.Path)
}

// SQLiteDSN builds a modernc.org/sqlite DSN with the pragmas every connection needs.
// Transactions begin IMMEDIATE: a deferred transaction that reads before it
// writes cannot wait on busy_timeout when another writer holds the lock.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
}
