package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrEmptyKey is returned when a write names no key.
var ErrEmptyKey = errors.New("setting key must not be empty")

// Store maps setting keys to values. A later write for an existing key
// replaces the earlier value. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	logger *slog.Logger
}

// NewStore returns an empty Store that reports through logger.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		values: make(map[string]string),
		logger: logger,
	}
}

// Get returns the value for key. A miss is logged and reported as ("", false).
func (s *Store) Get(key string) (string, bool) {
	if key == "" {
		s.logger.Warn("setting_invalid_key", "error", ErrEmptyKey)
		return "", false
	}

	value, ok := s.TryGet(key)
	if !ok {
		s.logger.Warn("setting_key_not_found", "key", key)
	}
	return value, ok
}

// TryGet is Get without the miss diagnostic.
func (s *Store) TryGet(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

// Set writes one setting. An empty source suppresses the per-key log line.
func (s *Store) Set(key, value, source string) error {
	if key == "" {
		return fmt.Errorf("%w (source %q)", ErrEmptyKey, source)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.write(key, value, source)
	if source != "" {
		s.logger.Info("setting_added", "key", key, "source", source)
	}
	return nil
}

// SetAll writes every entry and logs a single line for the batch.
// The batch is validated first; if any key is empty nothing is written.
func (s *Store) SetAll(entries map[string]string, source string) error {
	for key := range entries {
		if key == "" {
			return fmt.Errorf("%w (source %q)", ErrEmptyKey, source)
		}
	}

	s.mu.Lock()
	for key, value := range entries {
		s.write(key, value, source)
	}
	s.mu.Unlock()

	s.logger.Info("settings_added", "source", source, "count", len(entries))
	return nil
}

// write must be called with mu held.
func (s *Store) write(key, value, source string) {
	if _, exists := s.values[key]; exists {
		s.logger.Warn("setting_duplicate_key", "key", key, "source", source)
	}
	s.values[key] = value
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of settings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of every setting.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
