// Package prefs persists user preferences such as the desired feed topics.
// Preferences are stored as TOML, by default in ~/.config/marketsync/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/validation"
)

// Prefs holds user preferences. Topics is nil when no choice was stored;
// a stored empty list means the user unsubscribed from everything.
type Prefs struct {
	Topics      *[]string `toml:"topics,omitempty" json:"topics,omitempty"`
	PriceLocale string    `toml:"price_locale,omitempty" json:"price_locale,omitempty"`
	MaxRows     int       `toml:"max_rows,omitempty" json:"max_rows,omitempty"`
}

const (
	defaultPrefsPath   = "~/.config/marketsync/prefs.toml"
	defaultPriceLocale = "en-US"
	defaultMaxRows     = 25
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{PriceLocale: defaultPriceLocale, MaxRows: defaultMaxRows}
}

// SetTopics records topics as the stored choice, including an empty one.
func (p *Prefs) SetTopics(topics domain.TopicSet) {
	list := topics.Strings()
	p.Topics = &list
}

// TopicSet converts the stored topics. ok is false when no choice is stored.
func (p Prefs) TopicSet() (topics domain.TopicSet, ok bool, err error) {
	if p.Topics == nil {
		return nil, false, nil
	}
	if len(*p.Topics) == 0 {
		return domain.NewTopicSet(), true, nil
	}
	set, err := domain.ParseTopics(strings.Join(*p.Topics, ","))
	if err != nil {
		return nil, false, err
	}
	return set, true, nil
}

// Load reads preferences from the given path, falling back to defaults if
// the file is missing. A file that exists but is malformed or fails the
// schema is an error.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), fmt.Errorf("resolve path: %w", err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("read prefs: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Defaults(), fmt.Errorf("parse prefs: %w", err)
	}
	if err := validation.NewSchemaValidator().ValidateValue(doc, validation.SchemaPrefs); err != nil {
		return Defaults(), fmt.Errorf("prefs %s: %w", resolved, err)
	}

	prefs := Defaults()
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Defaults(), fmt.Errorf("parse prefs: %w", err)
	}
	if strings.TrimSpace(prefs.PriceLocale) == "" {
		prefs.PriceLocale = defaultPriceLocale
	}
	if prefs.MaxRows <= 0 {
		prefs.MaxRows = defaultMaxRows
	}
	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Store is a preferences file that can persist topic changes.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store for path. An empty path means DefaultPath.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the current preferences.
func (s *Store) Load() (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Load(s.path)
}

// SaveTopics rewrites the topics and keeps every other preference. An
// unreadable file is left untouched and its load error returned.
func (s *Store) SaveTopics(topics domain.TopicSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := Load(s.path)
	if err != nil {
		return fmt.Errorf("keep existing prefs: %w", err)
	}
	p.SetTopics(topics)
	return Save(s.path, p)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
