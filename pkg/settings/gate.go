package settings

import "log/slog"

// Gate decides whether Vault can be queried and where, reading only from
// the Store it belongs to.
type Gate struct {
	store  *Store
	logger *slog.Logger
}

// NewGate creates a Gate over store.
func NewGate(store *Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{store: store, logger: logger}
}

// CredentialsAvailable reports whether both AppRole credentials are set.
// A credential present with an empty value counts as missing.
// Each missing credential is logged, so one call may log twice.
func (g *Gate) CredentialsAvailable() bool {
	available := true
	for _, key := range []string{KeyVaultRoleID, KeyVaultSecretID} {
		if value, ok := g.store.TryGet(key); !ok || value == "" {
			available = false
			g.logger.Warn("vault_credential_missing", "key", key, "detail", key+" not set, unable to get vault secrets")
		}
	}
	return available
}

// Credentials returns the AppRole role and secret IDs without logging.
func (g *Gate) Credentials() (roleID, secretID string, ok bool) {
	roleID, roleOK := g.store.TryGet(KeyVaultRoleID)
	secretID, secretOK := g.store.TryGet(KeyVaultSecretID)
	return roleID, secretID, roleOK && secretOK && roleID != "" && secretID != ""
}

// Environment returns CRDS_ENV, or DefaultEnvironment when it is unset or empty.
func (g *Gate) Environment() string {
	environment, ok := g.store.TryGet(KeyEnvironment)
	if !ok || environment == "" {
		environment = DefaultEnvironment
	}
	g.logger.Info("settings_environment_resolved", "environment", environment)
	return environment
}

// StoreAddress returns VAULT_URI, or DefaultVaultAddress when it is unset or empty.
func (g *Gate) StoreAddress() string {
	address, ok := g.store.TryGet(KeyVaultAddress)
	if !ok || address == "" {
		g.logger.Warn("vault_address_defaulted", "key", KeyVaultAddress, "address", DefaultVaultAddress)
		return DefaultVaultAddress
	}
	return address
}
