package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Primary     Primary           `koanf:"primary"`
	Server      ServerConfig      `koanf:"server"`
	Storage     StorageConfig     `koanf:"storage"`
	Database    DatabaseConfig    `koanf:"database" validate:"-"`
	BankClient  BankConfig        `koanf:"bank_client"`
	Encryption  EncryptionConfig  `koanf:"encryption"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Auth        AuthConfig        `koanf:"auth"`
	Events      EventsConfig      `koanf:"events" validate:"-"`
	Metrics     MetricsConfig     `koanf:"metrics"`
	Logger      LoggerConfig      `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required,ltfield=WriteTimeout"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory postgres"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

type BankConfig struct {
	BankBaseURL     string        `koanf:"bank_base_url" validate:"required,url"`
	BankConnTimeout time.Duration `koanf:"bank_conn_timeout" validate:"required"`
}

// EncryptionConfig holds the passphrase the card-data key is derived from.
type EncryptionConfig struct {
	Key string `koanf:"key" validate:"required"`
}

type IdempotencyConfig struct {
	ResponseTTL   time.Duration `koanf:"response_ttl" validate:"required"`
	LockTimeout   time.Duration `koanf:"lock_timeout" validate:"required"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"required"`
	MaxEntries    int           `koanf:"max_entries" validate:"min=0"`
	MaxKeyLength  int           `koanf:"max_key_length" validate:"required,min=1"`
}

// AuthConfig maps API keys to the merchants that own them.
type AuthConfig struct {
	Merchants map[string]MerchantConfig `koanf:"merchants" validate:"dive"`
}

type MerchantConfig struct {
	ID   string `koanf:"id" validate:"required,uuid"`
	Name string `koanf:"name" validate:"required"`
}

type EventsConfig struct {
	Enabled bool     `koanf:"enabled"`
	Brokers []string `koanf:"brokers" validate:"required,min=1"`
	Topic   string   `koanf:"topic" validate:"required"`
}

type MetricsConfig struct {
	Exporter string        `koanf:"exporter" validate:"required,oneof=none stdout"`
	Interval time.Duration `koanf:"interval" validate:"required"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json text"`
}

var defaults = map[string]interface{}{
	"primary.env":                   "development",
	"server.port":                   "8000",
	"server.read_timeout":           "15s",
	"server.write_timeout":          "30s",
	"server.idle_timeout":           "60s",
	"server.request_timeout":        "25s",
	"storage.driver":                StorageMemory,
	"database.ssl_mode":             "disable",
	"database.max_open_conns":       10,
	"database.max_idle_conns":       2,
	"database.conn_max_lifetime":    "1h",
	"database.conn_max_idle_time":   "30m",
	"bank_client.bank_base_url":     "http://localhost:8080",
	"bank_client.bank_conn_timeout": "30s",
	"idempotency.response_ttl":      "24h",
	"idempotency.lock_timeout":      "5m",
	"idempotency.sweep_interval":    "1m",
	"idempotency.max_entries":       0,
	"idempotency.max_key_length":    64,
	"events.enabled":                false,
	"events.topic":                  "payments.processed",
	"metrics.exporter":              "none",
	"metrics.interval":              "60s",
	"logger.level":                  "info",
	"logger.format":                 "json",
}

// developmentMerchants are seeded when no merchants are configured outside production.
var developmentMerchants = map[string]MerchantConfig{
	"merchant-key-1": {ID: "a1b2c3d4-e5f6-7890-abcd-ef1234567890", Name: "Amazon"},
	"merchant-key-2": {ID: "b2c3d4e5-f6a7-8901-bcde-f12345678901", Name: "Apple"},
}

// LoadConfig layers defaults, an optional YAML file and GATEWAY_ environment
// variables, then validates the result. An empty configFile falls back to
// GATEWAY_CONFIG_FILE.
func LoadConfig(configFile string) (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	if configFile == "" {
		configFile = os.Getenv("GATEWAY_CONFIG_FILE")
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			logger.Error("failed to load config file", "path", configFile, "error", err)
			return nil, err
		}
	}

	err := k.Load(env.Provider("GATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "GATEWAY_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	if len(mainConfig.Auth.Merchants) == 0 && mainConfig.Primary.Env != "production" {
		mainConfig.Auth.Merchants = developmentMerchants
	}

	if err := mainConfig.Validate(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// Validate checks the loaded configuration. The database and events sections
// are only checked when the features that use them are switched on.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Storage.Driver == StoragePostgres {
		if err := validate.Struct(c.Database); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if c.Events.Enabled {
		if err := validate.Struct(c.Events); err != nil {
			return fmt.Errorf("events: %w", err)
		}
	}

	return nil
}
