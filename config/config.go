package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Retention RetentionConfig `yaml:"retention"`
	Privacy   PrivacyConfig   `yaml:"privacy"`
	Icon      IconConfig      `yaml:"icon"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	// BasePath is the root that relative item paths (files/...) resolve against.
	BasePath string `yaml:"base_path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RetentionConfig struct {
	RetentionDays   int `yaml:"retention_days"`
	MaxHistoryItems int `yaml:"max_history_items"`
	CleanupInterval int `yaml:"cleanup_interval"`
}

type PrivacyConfig struct {
	FilterPasswords    bool `yaml:"filter_passwords"`
	FilterBankCards    bool `yaml:"filter_bank_cards"`
	FilterIDNumbers    bool `yaml:"filter_id_numbers"`
	FilterPhoneNumbers bool `yaml:"filter_phone_numbers"`
}

type IconConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var AppConfig *Config

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	AppConfig = &cfg
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "smartpaste.db"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = filepath.Dir(cfg.Database.Path)
	}
	if cfg.Retention.RetentionDays == 0 {
		cfg.Retention.RetentionDays = 30
	}
	if cfg.Retention.CleanupInterval == 0 {
		cfg.Retention.CleanupInterval = 3600
	}
	if cfg.Icon.Width == 0 {
		cfg.Icon.Width = 128
	}
	if cfg.Icon.Height == 0 {
		cfg.Icon.Height = 128
	}
}
