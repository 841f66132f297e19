package settings

import (
	"fmt"
	"strconv"
)

// Keys lists the names accepted by Set, in file order.
var Keys = []string{
	"work_duration",
	"short_break_duration",
	"long_break_duration",
	"long_break_interval",
	"auto_start_breaks",
	"auto_start_pomodoros",
	"sound_enabled",
}

// Set assigns one field by its file key. The result is not validated.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "work_duration":
		return setInt(&s.WorkDuration, key, value)
	case "short_break_duration":
		return setInt(&s.ShortBreakDuration, key, value)
	case "long_break_duration":
		return setInt(&s.LongBreakDuration, key, value)
	case "long_break_interval":
		return setInt(&s.LongBreakInterval, key, value)
	case "auto_start_breaks":
		return setBool(&s.AutoStartBreaks, key, value)
	case "auto_start_pomodoros":
		return setBool(&s.AutoStartPomodoros, key, value)
	case "sound_enabled":
		return setBool(&s.SoundEnabled, key, value)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalid, key)
	}
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer", ErrInvalid, key)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be true or false", ErrInvalid, key)
	}
	*dst = b
	return nil
}
