package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type fileSettings struct {
	WorkDuration       int  `yaml:"work_duration" mapstructure:"work_duration"`
	ShortBreakDuration int  `yaml:"short_break_duration" mapstructure:"short_break_duration"`
	LongBreakDuration  int  `yaml:"long_break_duration" mapstructure:"long_break_duration"`
	LongBreakInterval  int  `yaml:"long_break_interval" mapstructure:"long_break_interval"`
	AutoStartBreaks    bool `yaml:"auto_start_breaks" mapstructure:"auto_start_breaks"`
	AutoStartPomodoros bool `yaml:"auto_start_pomodoros" mapstructure:"auto_start_pomodoros"`
	SoundEnabled       bool `yaml:"sound_enabled" mapstructure:"sound_enabled"`
}

// Load reads settings from a YAML file. Keys missing from the file keep
// their defaults and out-of-range values are clamped.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("stat settings file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	fileData := toFile(settings)
	if err := v.Unmarshal(&fileData); err != nil {
		return settings, fmt.Errorf("parse settings file: %w", err)
	}

	applyFileSettings(&settings, fileData)
	return settings, nil
}

// Save writes settings to path as YAML, creating parent directories.
func Save(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	serialized, err := Marshal(settings)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// Marshal renders settings in the file format.
func Marshal(settings Settings) ([]byte, error) {
	serialized, err := yaml.Marshal(toFile(settings))
	if err != nil {
		return nil, fmt.Errorf("marshal settings yaml: %w", err)
	}
	return serialized, nil
}

func toFile(s Settings) fileSettings {
	return fileSettings{
		WorkDuration:       s.WorkDuration,
		ShortBreakDuration: s.ShortBreakDuration,
		LongBreakDuration:  s.LongBreakDuration,
		LongBreakInterval:  s.LongBreakInterval,
		AutoStartBreaks:    s.AutoStartBreaks,
		AutoStartPomodoros: s.AutoStartPomodoros,
		SoundEnabled:       s.SoundEnabled,
	}
}

func applyFileSettings(settings *Settings, fileData fileSettings) {
	if fileData.WorkDuration > 0 {
		settings.WorkDuration = fileData.WorkDuration
	}
	if fileData.ShortBreakDuration > 0 {
		settings.ShortBreakDuration = fileData.ShortBreakDuration
	}
	if fileData.LongBreakDuration > 0 {
		settings.LongBreakDuration = fileData.LongBreakDuration
	}

	settings.LongBreakInterval = max(fileData.LongBreakInterval, MinLongBreakInterval)

	settings.AutoStartBreaks = fileData.AutoStartBreaks
	settings.AutoStartPomodoros = fileData.AutoStartPomodoros
	settings.SoundEnabled = fileData.SoundEnabled
}
