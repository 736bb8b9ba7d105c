package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	computor "github.com/njchilds90/computor"
)

const configFile = ".computor.yaml"

// Config is the shell configuration. Empty fields fall back to defaults;
// command-line flags override the file.
type Config struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	Database    string `yaml:"database"`
	MaxDepth    int    `yaml:"max_depth"`
	Color       *bool  `yaml:"color"`
}

func defaultConfig() Config {
	home, _ := os.UserHomeDir()
	on := true
	return Config{
		Prompt:      "> ",
		HistoryFile: filepath.Join(home, ".computor_history"),
		Database:    filepath.Join(home, ".computor.db"),
		MaxDepth:    computor.DefaultMaxDepth,
		Color:       &on,
	}
}

// loadConfig reads path over the defaults. When path is empty the file in
// the home directory is used if it exists.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, configFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.merge(file)
	if cfg.MaxDepth < 0 {
		return cfg, fmt.Errorf("%s: max_depth must not be negative", path)
	}
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.Prompt != "" {
		c.Prompt = o.Prompt
	}
	if o.HistoryFile != "" {
		c.HistoryFile = o.HistoryFile
	}
	if o.Database != "" {
		c.Database = o.Database
	}
	if o.MaxDepth != 0 {
		c.MaxDepth = o.MaxDepth
	}
	if o.Color != nil {
		c.Color = o.Color
	}
}
