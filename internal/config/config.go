// Package config loads the service configuration and holds the workflow
// constants shared across packages.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration of the service.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Reminder     ReminderConfig     `mapstructure:"reminder"`
	Localization LocalizationConfig `mapstructure:"localization"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

type HTTPConfig struct {
	Addr         string `mapstructure:"addr"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	MetricsPath  string `mapstructure:"metrics_path"`
}

func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // seconds
}

// GetDSN returns the libpq-style connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func (c *DatabaseConfig) GetMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Second
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig describes the named disks documents can live on.
type StorageConfig struct {
	DocumentsDisk string      `mapstructure:"documents_disk"`
	LocalRoot     string      `mapstructure:"local_root"`
	S3            MinioConfig `mapstructure:"s3"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether the s3 disk is configured.
func (c *MinioConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	TokenTTL  int    `mapstructure:"token_ttl"` // hours
}

func (c *AuthConfig) GetTokenTTL() time.Duration {
	return time.Duration(c.TokenTTL) * time.Hour
}

type ReminderConfig struct {
	PollInterval int `mapstructure:"poll_interval"` // seconds
	BatchSize    int `mapstructure:"batch_size"`
}

func (c *ReminderConfig) GetPollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return ReminderPollInterval
	}
	return time.Duration(c.PollInterval) * time.Second
}

type LocalizationConfig struct {
	Path     string `mapstructure:"path"`
	Language string `mapstructure:"language"`
}

// Validate checks the settings the service cannot start without.
func (cfg *Config) Validate() error {
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("redis addr is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth jwt_secret is required")
	}
	switch cfg.Storage.DocumentsDisk {
	case "", "private", "public":
	case "s3":
		if !cfg.Storage.S3.Enabled() {
			return errors.New("documents disk s3 requires storage.s3.endpoint and storage.s3.bucket")
		}
	default:
		return fmt.Errorf("unknown documents disk %q", cfg.Storage.DocumentsDisk)
	}
	return nil
}

func (cfg *Config) IsDevelopment() bool {
	return cfg.App.Environment == "development"
}
