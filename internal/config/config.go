// Package config loads application settings from the environment. A .env
// file in the working directory is read first when present; variables that
// are already set take precedence over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/TrevorS/winecluster"
)

// Config is the complete application configuration.
type Config struct {
	Data       DataConfig
	Clustering ClusteringConfig
	Server     ServerConfig
	LogLevel   zerolog.Level
}

// DataConfig locates the wine table.
type DataConfig struct {
	File string
}

// ClusteringConfig holds the analysis parameters.
type ClusteringConfig struct {
	MinK          int
	MaxK          int
	FinalK        int
	Seed          int64
	Workers       int
	MaxIterations int
	NInit         int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

// Load reads configuration from a .env file (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the environment only.
func FromEnv() (*Config, error) {
	var (
		cfg Config
		err error
	)
	cfg.Data.File = getEnvOrDefault("WINECLUSTER_DATA_FILE", "testdata/wines.csv")
	cfg.Server.Addr = getEnvOrDefault("WINECLUSTER_HTTP_ADDR", ":8080")

	c := &cfg.Clustering
	if c.MinK, err = getEnvInt("WINECLUSTER_K_MIN", winecluster.DefaultMinK); err != nil {
		return nil, err
	}
	if c.MaxK, err = getEnvInt("WINECLUSTER_K_MAX", winecluster.DefaultMaxK); err != nil {
		return nil, err
	}
	if c.FinalK, err = getEnvInt("WINECLUSTER_K_FINAL", winecluster.DefaultFinalK); err != nil {
		return nil, err
	}
	if c.Workers, err = getEnvInt("WINECLUSTER_WORKERS", 0); err != nil {
		return nil, err
	}
	if c.MaxIterations, err = getEnvInt("WINECLUSTER_MAX_ITERATIONS", 300); err != nil {
		return nil, err
	}
	if c.NInit, err = getEnvInt("WINECLUSTER_N_INIT", 10); err != nil {
		return nil, err
	}
	seed, err := getEnvInt("WINECLUSTER_SEED", int(winecluster.DefaultSeed))
	if err != nil {
		return nil, err
	}
	c.Seed = int64(seed)

	level := getEnvOrDefault("WINECLUSTER_LOG_LEVEL", "info")
	if cfg.LogLevel, err = zerolog.ParseLevel(level); err != nil {
		return nil, fmt.Errorf("config: WINECLUSTER_LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	k := c.Clustering
	if k.MinK < 1 {
		return fmt.Errorf("config: WINECLUSTER_K_MIN must be >= 1, got %d", k.MinK)
	}
	if k.MaxK < k.MinK {
		return fmt.Errorf("config: WINECLUSTER_K_MAX (%d) is below WINECLUSTER_K_MIN (%d)", k.MaxK, k.MinK)
	}
	if k.FinalK < 1 {
		return fmt.Errorf("config: WINECLUSTER_K_FINAL must be >= 1, got %d", k.FinalK)
	}
	if k.Workers < 0 {
		return fmt.Errorf("config: WINECLUSTER_WORKERS must be >= 0, got %d", k.Workers)
	}
	if k.MaxIterations < 1 {
		return fmt.Errorf("config: WINECLUSTER_MAX_ITERATIONS must be >= 1, got %d", k.MaxIterations)
	}
	if k.NInit < 1 {
		return fmt.Errorf("config: WINECLUSTER_N_INIT must be >= 1, got %d", k.NInit)
	}
	if c.Data.File == "" {
		return errors.New("config: WINECLUSTER_DATA_FILE is empty")
	}
	return nil
}

// Core returns the library configuration for these settings.
func (c *Config) Core() winecluster.Config {
	cfg := winecluster.DefaultConfig()
	cfg.Seed = c.Clustering.Seed
	cfg.Workers = c.Clustering.Workers
	cfg.MaxIterations = c.Clustering.MaxIterations
	cfg.NInit = c.Clustering.NInit
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}
