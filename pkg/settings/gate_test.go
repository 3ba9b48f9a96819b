package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_CredentialsAvailable(t *testing.T) {
	tests := []struct {
		name        string
		seed        map[string]string
		want        bool
		wantMissing []string
	}{
		{
			name: "Both present",
			seed: map[string]string{KeyVaultRoleID: "r", KeyVaultSecretID: "s"},
			want: true,
		},
		{
			name:        "Role missing",
			seed:        map[string]string{KeyVaultSecretID: "s"},
			wantMissing: []string{KeyVaultRoleID},
		},
		{
			name:        "Secret missing",
			seed:        map[string]string{KeyVaultRoleID: "r"},
			wantMissing: []string{KeyVaultSecretID},
		},
		{
			name:        "Both missing logs both",
			seed:        map[string]string{},
			wantMissing: []string{KeyVaultRoleID, KeyVaultSecretID},
		},
		{
			name:        "Empty value counts as missing",
			seed:        map[string]string{KeyVaultRoleID: "", KeyVaultSecretID: "s"},
			wantMissing: []string{KeyVaultRoleID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newLogCapture()
			store := NewStore(logger)
			require.NoError(t, store.SetAll(tt.seed, "seed"))
			logs.reset()

			gate := NewGate(store, logger)
			assert.Equal(t, tt.want, gate.CredentialsAvailable())

			var missing []string
			for _, e := range logs.find(t, "vault_credential_missing") {
				assert.Equal(t, "WARN", e["level"])
				missing = append(missing, e["key"].(string))
			}
			assert.Equal(t, tt.wantMissing, missing)

			_, _, ok := gate.Credentials()
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestGate_Environment(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]string
		want string
	}{
		{name: "Default", seed: nil, want: DefaultEnvironment},
		{name: "Override", seed: map[string]string{KeyEnvironment: "test"}, want: "test"},
		{name: "Empty falls back", seed: map[string]string{KeyEnvironment: ""}, want: DefaultEnvironment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(nil)
			require.NoError(t, store.SetAll(tt.seed, "seed"))
			before := store.Snapshot()

			gate := NewGate(store, nil)
			assert.Equal(t, tt.want, gate.Environment())
			assert.Equal(t, tt.want, gate.Environment(), "resolution is stable")
			assert.Equal(t, before, store.Snapshot(), "defaults are not written back")
		})
	}
}

func TestGate_StoreAddress(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		logger, logs := newLogCapture()
		gate := NewGate(NewStore(logger), logger)

		assert.Equal(t, DefaultVaultAddress, gate.StoreAddress())
		warns := logs.find(t, "vault_address_defaulted")
		require.Len(t, warns, 1)
		assert.Equal(t, DefaultVaultAddress, warns[0]["address"])
	})

	t.Run("Override", func(t *testing.T) {
		logger, logs := newLogCapture()
		store := NewStore(logger)
		require.NoError(t, store.Set(KeyVaultAddress, "test", "Testing"))

		gate := NewGate(store, logger)
		assert.Equal(t, "test", gate.StoreAddress())
		assert.Empty(t, logs.find(t, "vault_address_defaulted"))
	})

	t.Run("Reads live store", func(t *testing.T) {
		store := NewStore(nil)
		gate := NewGate(store, nil)
		assert.Equal(t, DefaultVaultAddress, gate.StoreAddress())

		require.NoError(t, store.Set(KeyVaultAddress, "https://vault.int:8200", "Testing"))
		assert.Equal(t, "https://vault.int:8200", gate.StoreAddress())
	})
}
