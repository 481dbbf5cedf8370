// Package config loads mmapctl settings from a TOML file and MMAPS_ env vars.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/gorustyt/mmaps/common/logger"
	"github.com/gorustyt/mmaps/detour"
	"github.com/gorustyt/mmaps/mmap"
)

const EnvPrefix = "MMAPS"

type Config struct {
	// DataDir holds the mmaps/ directory with region and tile files.
	DataDir string      `mapstructure:"data_dir" toml:"data_dir"`
	Query   QueryConfig `mapstructure:"query" toml:"query"`
	Log     LogConfig   `mapstructure:"log" toml:"log"`
}

type QueryConfig struct {
	MaxNodes int32 `mapstructure:"max_nodes" toml:"max_nodes"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" toml:"level"`
	Format     string `mapstructure:"format" toml:"format"`
	File       string `mapstructure:"file" toml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days"`
}

func Default() Config {
	lc := logger.DefaultConfig()
	return Config{
		DataDir: ".",
		Query:   QueryConfig{MaxNodes: mmap.DEFAULT_MAX_QUERY_NODES},
		Log: LogConfig{
			Level:      lc.Level,
			Format:     lc.Format,
			File:       lc.File,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAgeDays: lc.MaxAgeDays,
		},
	}
}

// Load reads path, or ./mmaps.toml when path is empty, and applies env
// overrides such as MMAPS_DATA_DIR and MMAPS_QUERY_MAX_NODES. A missing
// default file is not an error; a missing explicit one is.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("query.max_nodes", def.Query.MaxNodes)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("log.max_age_days", def.Log.MaxAgeDays)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("mmaps")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir is empty")
	}
	if c.Query.MaxNodes <= 0 || c.Query.MaxNodes > detour.DT_MAX_QUERY_NODES {
		return fmt.Errorf("config: query.max_nodes %d outside (0, %d]", c.Query.MaxNodes, detour.DT_MAX_QUERY_NODES)
	}
	return nil
}

func (c Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

// WriteTemplate encodes c as TOML.
func WriteTemplate(w io.Writer, c Config) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// WriteTemplateFile writes c to path, creating parent directories.
func WriteTemplateFile(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := WriteTemplate(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
