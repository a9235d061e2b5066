// Package config loads the optional YAML configuration shared by the
// recallit commands. Flags override file values; the file overrides the
// built-in defaults.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StoreConfig configures the passage store location.
type StoreConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// AIConfig configures the embedding and classifier endpoints.
type AIConfig struct {
	EmbeddingHost   string `yaml:"embedding_host"`
	EmbeddingModel  string `yaml:"embedding_model"`
	ClassifierHost  string `yaml:"classifier_host"`
	ClassifierModel string `yaml:"classifier_model"`
	ModelClassifier bool   `yaml:"model_classifier"`
}

// ServerConfig configures the retrieval server.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Store  StoreConfig  `yaml:"store"`
	AI     AIConfig     `yaml:"ai"`
	Server ServerConfig `yaml:"server"`
}

// Load reads a config from the given path. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./recallit_db"
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = "http://localhost:11434/v1"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "embeddinggemma"
	}
	if cfg.AI.ClassifierHost == "" {
		cfg.AI.ClassifierHost = cfg.AI.EmbeddingHost
	}
	if cfg.AI.ClassifierModel == "" {
		cfg.AI.ClassifierModel = "qwen2.5:3b"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
}
