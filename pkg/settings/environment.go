package settings

import (
	"errors"
	"fmt"
	"log/slog"
)

var errNoEnvironmentProvider = errors.New("no environment provider configured")

// EnvironmentProvider enumerates host environment variables.
type EnvironmentProvider interface {
	Enumerate() (map[string]string, error)
}

// EnvironmentLoader turns the host environment into the first settings layer.
type EnvironmentLoader struct {
	provider EnvironmentProvider
	logger   *slog.Logger
}

// NewEnvironmentLoader creates an EnvironmentLoader.
func NewEnvironmentLoader(provider EnvironmentProvider, logger *slog.Logger) *EnvironmentLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvironmentLoader{provider: provider, logger: logger}
}

// Load never fails: if enumeration errors or panics the result is empty.
// Variables with an empty name are dropped.
func (l *EnvironmentLoader) Load() (vars map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("environment_enumeration_failed", "error", fmt.Sprint(r))
			vars = map[string]string{}
		}
	}()

	if l.provider == nil {
		l.logger.Warn("environment_enumeration_failed", "error", errNoEnvironmentProvider)
		return map[string]string{}
	}

	raw, err := l.provider.Enumerate()
	if err != nil {
		l.logger.Warn("environment_enumeration_failed", "error", err)
		return map[string]string{}
	}

	vars = make(map[string]string, len(raw))
	skipped := 0
	for k, v := range raw {
		if k == "" {
			skipped++
			continue
		}
		vars[k] = v
	}
	if skipped > 0 {
		l.logger.Debug("environment_entries_skipped", "count", skipped)
	}
	return vars
}
