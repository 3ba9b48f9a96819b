package settings

import (
	"log/slog"
	"time"

	"settings-hub/pkg/env"
	"settings-hub/pkg/secrets"
)

type config struct {
	logger       *slog.Logger
	environment  EnvironmentProvider
	secretClient secrets.Client
	appName      func() string
	roleID       string
	secretID     string
	mount        string
	fetchTimeout time.Duration
	now          func() time.Time
}

func defaultConfig() config {
	return config{
		logger:       slog.Default(),
		environment:  env.NewOSProvider(),
		secretClient: secrets.NewVaultClient(),
		appName:      ApplicationName,
		mount:        secrets.DefaultMount,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
	}
}

// Option configures New.
type Option func(*config)

// WithLogger sets the logger every component reports through.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEnvironmentProvider replaces the process environment as the first layer.
func WithEnvironmentProvider(p EnvironmentProvider) Option {
	return func(c *config) {
		c.environment = p
	}
}

// WithSecretClient replaces the Vault client.
func WithSecretClient(client secrets.Client) Option {
	return func(c *config) {
		c.secretClient = client
	}
}

// WithAppName fixes the application identity instead of deriving it from the binary.
func WithAppName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.appName = func() string { return name }
		}
	}
}

// WithAppNameFunc supplies the application identity lazily.
func WithAppNameFunc(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.appName = fn
		}
	}
}

// WithVaultCredentials registers AppRole credentials on top of the environment
// layer, before the Gate runs.
func WithVaultCredentials(roleID, secretID string) Option {
	return func(c *config) {
		c.roleID = roleID
		c.secretID = secretID
	}
}

// WithMount sets the KV v2 mount buckets are read from.
func WithMount(mount string) Option {
	return func(c *config) {
		if mount != "" {
			c.mount = mount
		}
	}
}

// WithFetchTimeout bounds each bucket fetch. A client call that ignores its
// context is abandoned at the deadline but keeps running until it returns.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}
