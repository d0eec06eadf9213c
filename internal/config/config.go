// Package config provides configuration loading for the lakescan CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// Database configuration (metadata catalog)
	Database DatabaseConfig `mapstructure:"database"`

	// ObjectStore configuration (S3/MinIO)
	ObjectStore ObjectStoreConfig `mapstructure:"objectstore"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DatabaseConfig holds metadata catalog configuration.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`

	// Path is the sqlite database file (":memory:" for ephemeral).
	Path string `mapstructure:"path"`

	// Host/Port/User/Password/Name/SSLMode configure postgres.
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// ObjectStoreConfig holds S3/MinIO connection configuration.
type ObjectStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"useSSL"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "lakescan.db",
			Host:     "localhost",
			Port:     5432,
			User:     "lakescan",
			Password: "lakescan_dev",
			Name:     "lakescan",
			SSLMode:  "disable",
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint: "localhost:9000",
			Region:   "us-east-1",
			UseSSL:   false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".lakescan"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables
	v.SetEnvPrefix("LAKESCAN")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Unmarshal
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "lakescan.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "lakescan")
	v.SetDefault("database.password", "lakescan_dev")
	v.SetDefault("database.name", "lakescan")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("objectstore.endpoint", "localhost:9000")
	v.SetDefault("objectstore.accessKey", "")
	v.SetDefault("objectstore.secretKey", "")
	v.SetDefault("objectstore.region", "us-east-1")
	v.SetDefault("objectstore.useSSL", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
