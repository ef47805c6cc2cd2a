package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	Addr            string        `env:"FILEPICKER_ADDR" envDefault:":8080"`
	Debug           bool          `env:"FILEPICKER_DEBUG" envDefault:"false"`
	SniffContent    bool          `env:"FILEPICKER_SNIFF_CONTENT" envDefault:"true"`
	MaxRequestBytes int64         `env:"FILEPICKER_MAX_REQUEST_BYTES" envDefault:"44040192"`
	ShutdownTimeout time.Duration `env:"FILEPICKER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// loadConfig reads the configuration from the environment, after loading a
// .env file from the working directory if there is one.
func loadConfig() (config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("error parsing configuration: %w", err)
	}
	if cfg.MaxRequestBytes <= 0 {
		return config{}, fmt.Errorf("FILEPICKER_MAX_REQUEST_BYTES must be positive, got %d", cfg.MaxRequestBytes)
	}
	return cfg, nil
}
