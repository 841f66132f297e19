package settings

import (
	"errors"
	"strings"
	"testing"
)

func TestSet(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(Settings) bool
	}{
		{"work_duration", "600", func(s Settings) bool { return s.WorkDuration == 600 }},
		{"long_break_interval", "3", func(s Settings) bool { return s.LongBreakInterval == 3 }},
		{"auto_start_breaks", "true", func(s Settings) bool { return s.AutoStartBreaks }},
		{"sound_enabled", "false", func(s Settings) bool { return !s.SoundEnabled }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := Defaults()
			if err := s.Set(tt.key, tt.value); err != nil {
				t.Fatal(err)
			}
			if !tt.check(s) {
				t.Fatalf("Set(%q, %q) = %+v", tt.key, tt.value, s)
			}
		})
	}
}

func TestSetRejects(t *testing.T) {
	tests := []struct{ key, value string }{
		{"work_duration", "ten"},
		{"auto_start_breaks", "maybe"},
		{"volume", "11"},
	}
	for _, tt := range tests {
		s := Defaults()
		if err := s.Set(tt.key, tt.value); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Set(%q, %q) err = %v, want ErrInvalid", tt.key, tt.value, err)
		}
	}
}

func TestMarshalUsesFileKeys(t *testing.T) {
	out, err := Marshal(Defaults())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range Keys {
		if !strings.Contains(string(out), key+":") {
			t.Fatalf("Marshal output missing %s:\n%s", key, out)
		}
	}
}
