package settings

// Well-known keys. They share the namespace of every other setting.
const (
	KeyVaultRoleID   = "VAULT_ROLE_ID"
	KeyVaultSecretID = "VAULT_SECRET_ID"
	KeyEnvironment   = "CRDS_ENV"
	KeyVaultAddress  = "VAULT_URI"
	KeyAppName       = "APP_NAME"
)

const (
	DefaultEnvironment  = "local"
	DefaultVaultAddress = "https://vault.crossroads.net"

	// CommonBucket holds settings shared by every application in an environment.
	CommonBucket = "common"
)

// Source labels used by the initialization sequence.
const (
	SourceEnvironment  = "Environment Variables"
	SourceRegistration = "Registration"
	SourceVaultCommon  = "Vault Common"
	SourceVaultApp     = "Vault App"
	SourceAppName      = "App Name"
)
