package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the runtime configuration, read from the environment.
type Config struct {
	Env           string
	Port          string
	DataDir       string
	StorageDriver string
	DatabaseDSN   string
	RabbitMQURL   string
	RabbitMQQueue string
	BcryptCost    int
	CORSOrigins   string
	SecretFile    string
	JWTSecret     string
}

// AccountsFile is the path of the accounts document for the json driver.
func (c Config) AccountsFile() string {
	return filepath.Join(c.DataDir, "accounts.json")
}

// TicketsFile is the path of the tickets document for the json driver.
func (c Config) TicketsFile() string {
	return filepath.Join(c.DataDir, "databaseStorage.json")
}

// Load reads configuration from the environment, then loads or creates the
// token signing secret.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", ":3872")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("STORAGE_DRIVER", StorageJSON)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "ticket_events")
	v.SetDefault("BCRYPT_COST", 14)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SECRET_FILE", ".env")
	v.AutomaticEnv()

	cfg := Config{
		Env:           v.GetString("APP_ENV"),
		Port:          v.GetString("APP_PORT"),
		DataDir:       v.GetString("DATA_DIR"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RabbitMQQueue: v.GetString("RABBITMQ_QUEUE"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		CORSOrigins:   v.GetString("CORS_ORIGINS"),
		SecretFile:    v.GetString("SECRET_FILE"),
	}

	switch cfg.StorageDriver {
	case StorageJSON:
	case StorageSQLite:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = filepath.Join(cfg.DataDir, "helpdesk.db")
		}
	case StoragePostgres:
		if cfg.DatabaseDSN == "" {
			return Config{}, fmt.Errorf("DATABASE_DSN is required for the postgres storage driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	secret, _, err := LoadOrCreateSecret(cfg.SecretFile)
	if err != nil {
		return Config{}, err
	}
	cfg.JWTSecret = secret
	return cfg, nil
}
