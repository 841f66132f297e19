package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "POMODORO"
	appDir    = "pomodoro_tui"
)

type Config struct {
	DBPath         string        `mapstructure:"db_path"`
	SettingsPath   string        `mapstructure:"settings_path"`
	LogPath        string        `mapstructure:"log_path"`
	Addr           string        `mapstructure:"addr"`
	AutoStartDelay time.Duration `mapstructure:"auto_start_delay"`
}

// DefaultConfig places every file under the user config directory.
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		DBPath:         filepath.Join(dir, "pomodoro.db"),
		SettingsPath:   filepath.Join(dir, "settings.yaml"),
		LogPath:        filepath.Join(dir, "pomodoro.log"),
		Addr:           "127.0.0.1:8080",
		AutoStartDelay: 2 * time.Second,
	}
}

// DataDir returns the directory holding the database and settings.
func DataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, appDir)
}

// Load merges defaults, the optional YAML file at path and POMODORO_*
// environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("settings_path", def.SettingsPath)
	v.SetDefault("log_path", def.LogPath)
	v.SetDefault("addr", def.Addr)
	v.SetDefault("auto_start_delay", def.AutoStartDelay)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.AutoStartDelay <= 0 {
		cfg.AutoStartDelay = def.AutoStartDelay
	}
	return cfg, nil
}
