package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EmbeddingAuto    = "auto"
	EmbeddingGemini  = "gemini"
	EmbeddingHashing = "hashing"
)

// Load reads configuration from defaults, an optional YAML file, an
// optional .env file and the environment, in increasing precedence.
// Environment keys are the upper-cased key path with dots replaced by
// underscores, e.g. DATABASE_DRIVER.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("resume-matcher")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.AI.Gemini.APIKey == "" {
		for _, env := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
			if val := os.Getenv(env); val != "" {
				cfg.AI.Gemini.APIKey = val
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.public_url", "http://localhost:5000")
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.body_limit_mb", 16)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.sqlite_path", "recruitment.db")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ai.gemini.api_key", "")
	v.SetDefault("ai.gemini.api_key_file", "")
	v.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	v.SetDefault("ai.gemini.embedding_model", "text-embedding-004")
	v.SetDefault("ai.gemini.max_retries", 0)
	v.SetDefault("ai.gemini.timeout", "60s")

	v.SetDefault("embedding.provider", EmbeddingAuto)

	v.SetDefault("explain.enabled", true)
	v.SetDefault("explain.samples", 512)
	v.SetDefault("explain.seed", 0)
	v.SetDefault("explain.chrome_path", "")
	v.SetDefault("explain.timeout", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("database.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}

	switch c.Embedding.Provider {
	case EmbeddingAuto, EmbeddingGemini, EmbeddingHashing:
	default:
		return fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider)
	}

	if c.Server.UploadDir == "" {
		return errors.New("server.upload_dir is required")
	}
	if c.Server.BodyLimitMB <= 0 {
		return errors.New("server.body_limit_mb must be positive")
	}
	if c.Explain.Samples <= 0 {
		return errors.New("explain.samples must be positive")
	}
	if c.Server.SessionSecret != "" {
		key, err := base64.StdEncoding.DecodeString(c.Server.SessionSecret)
		if err != nil || (len(key) != 16 && len(key) != 24 && len(key) != 32) {
			return errors.New("server.session_secret must be a base64 encoded 16, 24 or 32 byte key")
		}
	}
	return nil
}

// GeminiAPIKey resolves the API key, preferring the key file when set.
// An empty key and nil error mean Gemini is not configured.
func (c *Config) GeminiAPIKey() (string, error) {
	g := c.AI.Gemini
	if file := strings.TrimSpace(g.APIKeyFile); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read gemini api key from %q: %w", file, err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", fmt.Errorf("gemini api key file %q is empty", file)
		}
		return key, nil
	}
	return strings.TrimSpace(g.APIKey), nil
}
