// Package env provides the environment-variable layer for settings aggregation.
package env

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrEnvironmentUnavailable is returned when the host environment cannot be enumerated.
var ErrEnvironmentUnavailable = errors.New("environment enumeration unavailable")

// OSProvider enumerates the process environment.
type OSProvider struct {
	environ func() []string
}

// NewOSProvider returns a provider backed by os.Environ.
func NewOSProvider() *OSProvider {
	return &OSProvider{environ: os.Environ}
}

// Enumerate returns every variable of the process environment as a map.
// Entries without a separator are ignored.
func (p *OSProvider) Enumerate() (map[string]string, error) {
	environ := p.environ
	if environ == nil {
		environ = os.Environ
	}

	raw := environ()
	if raw == nil {
		return nil, ErrEnvironmentUnavailable
	}

	vars := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		vars[key] = value
	}
	return vars, nil
}

// StaticProvider serves a fixed set of variables. Useful for embedding
// and for tests that must not depend on the host environment.
type StaticProvider map[string]string

// Enumerate returns a copy of the fixed variables.
func (p StaticProvider) Enumerate() (map[string]string, error) {
	vars := make(map[string]string, len(p))
	for k, v := range p {
		vars[k] = v
	}
	return vars, nil
}

// Render formats values as a dotenv document with keys sorted.
func Render(values map[string]string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	return godotenv.Marshal(values)
}
