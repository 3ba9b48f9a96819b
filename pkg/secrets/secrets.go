package secrets

import (
	"context"
	"errors"
)

// DefaultMount is the KV v2 mount that settings buckets live under.
const DefaultMount = "kv"

var (
	// ErrNoClientToken is returned when an AppRole login succeeds without issuing a token.
	ErrNoClientToken = errors.New("approle login returned no client token")
	// ErrIncompleteRequest is returned when a Request lacks an address, credentials or path.
	ErrIncompleteRequest = errors.New("incomplete secret request")
)

// Request scopes one bucket read against the secret store.
type Request struct {
	Address  string
	RoleID   string
	SecretID string
	Mount    string
	Path     string
}

// Validate reports whether every field needed for a fetch is present.
func (r Request) Validate() error {
	switch {
	case r.Address == "":
		return errors.Join(ErrIncompleteRequest, errors.New("address is empty"))
	case r.RoleID == "" || r.SecretID == "":
		return errors.Join(ErrIncompleteRequest, errors.New("approle credentials are empty"))
	case r.Path == "":
		return errors.Join(ErrIncompleteRequest, errors.New("path is empty"))
	}
	return nil
}

// Client retrieves all key/value pairs stored at one secret path.
type Client interface {
	// Fetch returns the secret's fields flattened to strings.
	// Any transport, auth, not-found or decoding failure is returned as an error.
	Fetch(ctx context.Context, req Request) (map[string]string, error)

	// Close cleans up any active connections to the secret store.
	Close() error
}
