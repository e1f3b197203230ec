package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional TOML file holding ekonumctl defaults.
type fileConfig struct {
	Store    storeConfig    `toml:"store"`
	Cache    cacheConfig    `toml:"cache"`
	Forecast forecastConfig `toml:"forecast"`
}

type storeConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type cacheConfig struct {
	RedisAddr string `toml:"redis_addr"`
	Queue     string `toml:"queue"`
}

type forecastConfig struct {
	Years       int     `toml:"years"`
	InitialCash float64 `toml:"initial_cash"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Store:    storeConfig{Driver: "sqlite", DSN: filepath.Join("data", "ekonum.db")},
		Forecast: forecastConfig{Years: 3},
	}
}

// defaultConfigPath follows the XDG layout.
func defaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ekonum", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ekonum", "config.toml")
}

// loadFileConfig reads path over the defaults. A missing file is only an
// error when the path was given explicitly.
func loadFileConfig(path string, explicit bool) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
