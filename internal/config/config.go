// Package config handles application configuration loading.
package config

import (
	"os"
	"strconv"
	"strings"

	"llmchat/internal/utils"
)

// Config holds all configuration for the application.
type Config struct {
	Log       LogConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Keyring   KeyringConfig
	Chat      ChatConfig
	Providers []ProviderEnv
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string
	DBPath  string
}

// RedisConfig holds redis connection settings for the redis backend.
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
}

// KeyringConfig selects where API keys are kept. Backend "none" keeps them
// in the settings snapshot.
type KeyringConfig struct {
	Backend  string
	FileDir  string
	Password string
}

// Enabled reports whether API keys should go to the OS keyring.
func (c KeyringConfig) Enabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Backend), "none")
}

// ChatConfig holds the startup provider/model selection.
type ChatConfig struct {
	Provider string
	Model    string
}

// ProviderEnv is a provider credential supplied through the environment.
type ProviderEnv struct {
	ID      string
	APIKey  string
	APIBase string
}

// Load loads configuration from environment variables, reading a .env file
// from the working directory and the project root when they exist, or the
// file named by LLMCHAT_ENV_FILE.
func Load() (*Config, error) {
	if _, err := utils.LoadEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "sqlite"),
			DBPath:  getEnv("DB_PATH", ""),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "llmchat:"),
		},
		Keyring: KeyringConfig{
			Backend:  getEnv("KEYRING_BACKEND", ""),
			FileDir:  getEnv("KEYRING_FILE_DIR", "~/.llmchat/keys"),
			Password: getEnv("KEYRING_PASSWORD", ""),
		},
		Chat: ChatConfig{
			Provider: getEnv("LLMCHAT_PROVIDER", ""),
			Model:    getEnv("LLMCHAT_MODEL", ""),
		},
	}

	for _, id := range []string{"openai", "anthropic", "gemini"} {
		prefix := strings.ToUpper(id)
		key := strings.TrimSpace(os.Getenv(prefix + "_API_KEY"))
		if key == "" {
			continue
		}
		cfg.Providers = append(cfg.Providers, ProviderEnv{
			ID:      id,
			APIKey:  key,
			APIBase: getEnv(prefix+"_API_BASE", ""),
		})
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
