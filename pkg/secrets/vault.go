package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/vault/api"

	"settings-hub/pkg/telemetry"
)

const approleLoginPath = "auth/approle/login"

// DefaultTimeout bounds a single Vault request when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// VaultClient implements Client against HashiCorp Vault or OpenBao.
// It logs in with AppRole for every fetch and reads from the KV v2 engine.
type VaultClient struct {
	timeout    time.Duration
	maxRetries *int
}

// VaultOption configures a VaultClient.
type VaultOption func(*VaultClient)

// WithRequestTimeout overrides DefaultTimeout.
func WithRequestTimeout(d time.Duration) VaultOption {
	return func(v *VaultClient) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithMaxRetries overrides the Vault SDK's retry count for 5xx responses.
func WithMaxRetries(n int) VaultOption {
	return func(v *VaultClient) {
		v.maxRetries = &n
	}
}

// NewVaultClient creates a VaultClient.
func NewVaultClient(opts ...VaultOption) *VaultClient {
	v := &VaultClient{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Fetch logs in at req.Address with the AppRole credentials and reads
// <mount>/data/<path>. Field values are flattened to strings.
func (v *VaultClient) Fetch(ctx context.Context, req Request) (map[string]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	mount := req.Mount
	if mount == "" {
		mount = DefaultMount
	}

	client, err := v.newClient(req.Address)
	if err != nil {
		return nil, err
	}

	loginCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	auth, err := client.Logical().WriteWithContext(loginCtx, approleLoginPath, map[string]interface{}{
		"role_id":   req.RoleID,
		"secret_id": req.SecretID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log in with approle: %w", err)
	}
	if auth == nil || auth.Auth == nil || auth.Auth.ClientToken == "" {
		return nil, ErrNoClientToken
	}
	client.SetToken(auth.Auth.ClientToken)

	readCtx, cancelRead := context.WithTimeout(ctx, v.timeout)
	defer cancelRead()

	secret, err := client.KVv2(mount).Get(readCtx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", mount, req.Path, err)
	}

	return Flatten(secret.Data)
}

// Close is a placeholder; every fetch uses its own short-lived client.
func (v *VaultClient) Close() error {
	return nil
}

func (v *VaultClient) newClient(address string) (*api.Client, error) {
	config := api.DefaultConfig()
	if config.Error != nil {
		return nil, fmt.Errorf("failed to read vault environment: %w", config.Error)
	}
	config.Address = address
	// VAULT_AGENT_ADDR would otherwise take precedence over address.
	config.AgentAddress = ""
	config.Timeout = v.timeout
	if v.maxRetries != nil {
		config.MaxRetries = *v.maxRetries
	}
	config.HttpClient.Transport = telemetry.NewTransport(config.HttpClient.Transport)

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	// A token picked up from VAULT_TOKEN must not leak into the AppRole login.
	client.ClearToken()
	return client, nil
}

// Flatten converts the fields of a KV secret to strings. Scalars are
// formatted directly; nested values are encoded as JSON.
func Flatten(data map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string, len(data))
	for key, raw := range data {
		value, err := stringify(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert field %q: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

func stringify(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case float32, float64:
		return fmt.Sprintf("%g", v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}
