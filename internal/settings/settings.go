package settings

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalid is returned when an update carries values the timer cannot run with.
var ErrInvalid = errors.New("invalid settings")

// MinLongBreakInterval is the smallest number of work phases between long breaks.
const MinLongBreakInterval = 2

const (
	DefaultWorkDuration       = 25 * 60
	DefaultShortBreakDuration = 5 * 60
	DefaultLongBreakDuration  = 15 * 60
	DefaultLongBreakInterval  = 4
)

// Settings is the user-editable timer configuration. Durations are seconds.
type Settings struct {
	WorkDuration       int  `json:"workDuration"`
	ShortBreakDuration int  `json:"shortBreakDuration"`
	LongBreakDuration  int  `json:"longBreakDuration"`
	LongBreakInterval  int  `json:"longBreakInterval"`
	AutoStartBreaks    bool `json:"autoStartBreaks"`
	AutoStartPomodoros bool `json:"autoStartPomodoros"`
	SoundEnabled       bool `json:"soundEnabled"`
}

func Defaults() Settings {
	return Settings{
		WorkDuration:       DefaultWorkDuration,
		ShortBreakDuration: DefaultShortBreakDuration,
		LongBreakDuration:  DefaultLongBreakDuration,
		LongBreakInterval:  DefaultLongBreakInterval,
		SoundEnabled:       true,
	}
}

func (s Settings) Validate() error {
	if s.WorkDuration <= 0 || s.ShortBreakDuration <= 0 || s.LongBreakDuration <= 0 {
		return fmt.Errorf("%w: durations must be positive seconds", ErrInvalid)
	}
	if s.LongBreakInterval < MinLongBreakInterval {
		return fmt.Errorf("%w: long break interval must be at least %d", ErrInvalid, MinLongBreakInterval)
	}
	return nil
}

// Store holds the current settings and persists updates to a YAML file.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

// Open loads the settings file at path. A missing file yields defaults.
func Open(path string) (*Store, error) {
	current, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, current: current}, nil
}

// NewMemoryStore returns a store that never touches the filesystem.
func NewMemoryStore(initial Settings) *Store {
	return &Store{current: initial}
}

// Read returns a snapshot of the current settings.
func (s *Store) Read() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates next, writes it to disk and makes it current.
func (s *Store) Update(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := Save(s.path, next); err != nil {
			return err
		}
	}
	s.current = next
	return nil
}

func (s *Store) Path() string {
	return s.path
}
