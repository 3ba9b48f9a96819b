// Package settings aggregates configuration for a running service from ranked
// sources into one key/value Store.
//
// Sources are applied in a fixed order and the last writer wins:
//
//  1. process environment variables ("Environment Variables")
//  2. credentials registered with WithVaultCredentials ("Registration")
//  3. the shared "common" Vault bucket ("Vault Common")
//  4. the application's own Vault bucket ("Vault App")
//  5. the application name itself under APP_NAME ("App Name")
//
// Steps 3 to 5 only run when VAULT_ROLE_ID and VAULT_SECRET_ID are present
// after the earlier layers. The Vault address (VAULT_URI) and the deployment
// environment (CRDS_ENV) are read back out of the Store being built, so an
// operator can override their defaults with environment variables.
//
// Remote failures never stop initialization; they are logged and contribute
// nothing.
package settings
