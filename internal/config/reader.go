package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ReaderConfig configures the terminal reading client.
type ReaderConfig struct {
	APIURL         string        `env:"READER_API_URL" envDefault:"http://localhost:8080/api"`
	CredentialPath string        `env:"READER_CREDENTIAL_PATH"`
	MinViewTime    time.Duration `env:"READER_MIN_VIEW_TIME" envDefault:"2s"`
	HTTPTimeout    time.Duration `env:"READER_HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel       string        `env:"READER_LOG_LEVEL" envDefault:"warn"`
}

// LoadReader reads the client configuration from the environment.
func LoadReader() (*ReaderConfig, error) {
	_ = godotenv.Load()

	cfg := &ReaderConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse reader env: %w", err)
	}
	if cfg.CredentialPath == "" {
		cfg.CredentialPath = DefaultCredentialPath()
	}
	return cfg, nil
}

// Logger returns the logger settings for the client. Client logs go to
// stderr so they never mix with rendered chapter text.
func (c ReaderConfig) Logger() LoggerConfig {
	return LoggerConfig{Level: c.LogLevel, Output: "stderr"}
}

// DefaultCredentialPath is ~/.novel-reader/credential.json.
func DefaultCredentialPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".novel-reader", "credential.json")
}
