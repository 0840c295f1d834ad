// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrNilPointer    = errors.New("nil pointer provided to config loader")
)

var dotenvOnce sync.Once

// Load parses environment variables into the provided struct based on its
// `env` field tags. The .env file is loaded once per process if present.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// Missing .env is fine, real environments set variables directly.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad panics on failure. Used for configuration the process cannot
// start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
