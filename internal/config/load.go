package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variables, e.g.
// TASKAPI_SERVER_PORT or TASKAPI_DATABASE_URL.
const envPrefix = "TASKAPI"

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence. Returns a validated Config or an error; the caller is
// expected to fail fast.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.client_url", "http://localhost:3000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("mail.smtp_port", 587)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// AutomaticEnv alone does not surface nested keys to Unmarshal;
	// bind them explicitly.
	for _, key := range []string{
		"server.port", "server.log_level", "server.client_url", "server.cors_origins",
		"database.url",
		"auth.jwt_secret", "auth.bcrypt_cost",
		"oauth.google_client_id", "oauth.google_client_secret", "oauth.google_redirect_url",
		"oauth.github_client_id", "oauth.github_client_secret",
		"mail.smtp_host", "mail.smtp_port", "mail.smtp_username", "mail.smtp_password", "mail.from",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
