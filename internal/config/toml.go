// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/zbalance/internal/logger"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analyze AnalyzeConfig `toml:"analyze"`
	Logging LoggingConfig `toml:"logging"`
}

// AnalyzeConfig maps analysis-related settings.
type AnalyzeConfig struct {
	GameDir         *string  `toml:"game-dir"`
	BulletThreshold *float64 `toml:"bullet-threshold"`
	Details         *string  `toml:"details"`
	Save            *bool    `toml:"save"`
}

// LoggingConfig maps logging settings.
type LoggingConfig struct {
	Level          *string `toml:"level"`
	ConsoleFormat  *string `toml:"console-format"`
	File           *bool   `toml:"file"`
	FilePath       *string `toml:"file-path"`
	FileFormat     *string `toml:"file-format"`
	FileMaxSizeMB  *int    `toml:"file-max-size-mb"`
	FileMaxBackups *int    `toml:"file-max-backups"`
	FileMaxAgeDays *int    `toml:"file-max-age-days"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// LoggerConfig overlays the [logging] section onto logger defaults.
func (c LoggingConfig) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.FilePath = DefaultLogPath()
	if c.Level != nil {
		cfg.Level = *c.Level
	}
	if c.ConsoleFormat != nil {
		cfg.ConsoleFormat = *c.ConsoleFormat
	}
	if c.File != nil {
		cfg.FileEnabled = *c.File
	}
	if c.FilePath != nil && *c.FilePath != "" {
		cfg.FilePath = *c.FilePath
	}
	if c.FileFormat != nil {
		cfg.FileFormat = *c.FileFormat
	}
	if c.FileMaxSizeMB != nil && *c.FileMaxSizeMB > 0 {
		cfg.FileMaxSizeMB = *c.FileMaxSizeMB
	}
	if c.FileMaxBackups != nil && *c.FileMaxBackups > 0 {
		cfg.FileMaxBackups = *c.FileMaxBackups
	}
	if c.FileMaxAgeDays != nil && *c.FileMaxAgeDays > 0 {
		cfg.FileMaxAgeDays = *c.FileMaxAgeDays
	}
	return cfg
}
