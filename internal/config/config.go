package config

import "time"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AI        AIConfig        `mapstructure:"ai"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Explain   ExplainConfig   `mapstructure:"explain"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// PublicURL prefixes the apply links handed out to employers.
	PublicURL     string `mapstructure:"public_url"`
	UploadDir     string `mapstructure:"upload_dir"`
	SessionSecret string `mapstructure:"session_secret"`
	BodyLimitMB   int    `mapstructure:"body_limit_mb"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool { return r.Address != "" }

type AIConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	APIKeyFile     string        `mapstructure:"api_key_file"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	MaxRetries     int           `mapstructure:"max_retries"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	// Provider is "auto", "gemini" or "hashing". Auto picks gemini when an
	// API key is available.
	Provider string `mapstructure:"provider"`
}

type ExplainConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Samples    int           `mapstructure:"samples"`
	Seed       int64         `mapstructure:"seed"`
	ChromePath string        `mapstructure:"chrome_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
