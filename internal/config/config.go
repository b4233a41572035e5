package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	General    GeneralConfig    `toml:"general"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
}

type GeneralConfig struct {
	Interval        int    `toml:"interval"`         // seconds between polls
	CredentialsFile string `toml:"credentials_file"` // empty = ~/.claude/.credentials.json
	DataDir         string `toml:"data_dir"`         // empty = ~/.claude/projects
}

// ThresholdsConfig holds the severity cutoffs, as percentages.
type ThresholdsConfig struct {
	Yellow int `toml:"yellow"`
	Orange int `toml:"orange"`
	Red    int `toml:"red"`
}

func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Interval: 30,
		},
		Thresholds: ThresholdsConfig{
			Yellow: 25,
			Orange: 50,
			Red:    75,
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "claude-status", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // use defaults
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
