package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HRDESK_DATABASE_HOST.
const EnvPrefix = "HRDESK"

// Load reads .env (if present), the optional YAML file at path and HRDESK_*
// environment variables, then applies defaults and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional outside of local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// bindKeys registers every key so AutomaticEnv can resolve it during Unmarshal
// even when no config file mentions it.
func bindKeys(v *viper.Viper) {
	keys := []string{
		"app.name", "app.environment", "app.log_level",
		"http.addr", "http.read_timeout", "http.write_timeout", "http.metrics_path",
		"database.host", "database.port", "database.user", "database.password", "database.name",
		"database.sslmode", "database.max_open_conns", "database.max_idle_conns", "database.conn_max_lifetime",
		"redis.addr", "redis.password", "redis.db",
		"storage.documents_disk", "storage.local_root",
		"storage.s3.endpoint", "storage.s3.access_key", "storage.s3.secret_key",
		"storage.s3.bucket", "storage.s3.region", "storage.s3.use_ssl",
		"auth.jwt_secret", "auth.issuer", "auth.token_ttl",
		"reminder.poll_interval", "reminder.batch_size",
		"localization.path", "localization.language",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func setDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "hrdesk"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "production"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}

	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 10
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 10
	}
	if cfg.HTTP.MetricsPath == "" {
		cfg.HTTP.MetricsPath = "/metrics"
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	if cfg.Storage.DocumentsDisk == "" {
		cfg.Storage.DocumentsDisk = DefaultDocumentsDisk
	}
	if cfg.Storage.LocalRoot == "" {
		cfg.Storage.LocalRoot = "storage/app"
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "hrdesk-service"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 72
	}

	if cfg.Reminder.BatchSize == 0 {
		cfg.Reminder.BatchSize = ReminderBatchSize
	}

	if cfg.Localization.Path == "" {
		cfg.Localization.Path = "internal/localization"
	}
	if cfg.Localization.Language == "" {
		cfg.Localization.Language = "en"
	}
}
