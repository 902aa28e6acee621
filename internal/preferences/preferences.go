// Package preferences persists a visitor's theme, locale and accessibility
// toggles as a JSON blob merged over defaults.
package preferences

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Preferences struct {
	Theme        Theme  `json:"theme"`
	Locale       string `json:"locale"`
	ReduceMotion bool   `json:"reduce_motion"`
	HighContrast bool   `json:"high_contrast"`
	LargeText    bool   `json:"large_text"`
}

func Defaults() Preferences {
	return Preferences{Theme: ThemeSystem, Locale: "en"}
}

func (p Preferences) Validate() error {
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("unknown theme %q", p.Theme)
	}
	if p.Locale == "" || len(p.Locale) > 16 {
		return fmt.Errorf("invalid locale %q", p.Locale)
	}
	return nil
}

// Blobs is the key/value store preferences are kept in.
type Blobs interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

type Store struct {
	blobs Blobs
	log   *zap.Logger
}

func NewStore(blobs Blobs, log *zap.Logger) *Store {
	return &Store{blobs: blobs, log: log}
}

// Load returns the stored preferences with missing fields taken from the
// defaults. Unreadable or invalid blobs yield the defaults.
func (s *Store) Load(key string) Preferences {
	prefs := Defaults()
	raw, ok, err := s.blobs.Get(key)
	if err != nil {
		s.log.Warn("Failed to read preferences", zap.String("key", key), zap.Error(err))
		return prefs
	}
	if !ok {
		return prefs
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		s.log.Warn("Discarding malformed preferences", zap.String("key", key), zap.Error(err))
		return Defaults()
	}
	if err := prefs.Validate(); err != nil {
		s.log.Warn("Discarding invalid preferences", zap.String("key", key), zap.Error(err))
		return Defaults()
	}
	return prefs
}

func (s *Store) Save(key string, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.blobs.Set(key, raw)
}
