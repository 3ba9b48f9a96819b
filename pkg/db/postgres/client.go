package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Internal variables for testing
var (
	sqlOpen = sql.Open
)

// SettingsReader is the read side of the aggregated settings store.
type SettingsReader interface {
	TryGet(key string) (string, bool)
}

// ConnectPostgres establishes a connection to PostgreSQL and verifies it with a Ping.
// Connection parameters come from the aggregated settings, so they may live in
// the environment or in Vault.
func ConnectPostgres(driverName string, settings SettingsReader) (*sql.DB, error) {
	dsn, err := GetPostgresDSN(settings)
	if err != nil {
		return nil, err
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// GetPostgresDSN constructs the DSN from settings.
func GetPostgresDSN(settings SettingsReader) (string, error) {
	// DATABASE_URL wins over the individual parts
	if dsn := lookup(settings, "DATABASE_URL", ""); dsn != "" {
		return dsn, nil
	}

	host := lookup(settings, "DB_HOST", "localhost")
	port := lookup(settings, "DB_PORT", "5432")
	user := lookup(settings, "DB_USER", "settings")
	dbname := lookup(settings, "DB_NAME", "settings")
	password := lookup(settings, "DB_PASSWORD", "")
	sslmode := lookup(settings, "DB_SSLMODE", "disable")

	if host == "" || user == "" || dbname == "" || password == "" {
		return "", fmt.Errorf("missing required database credentials (host, user, dbname, or password)")
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s timezone=UTC",
		host, port, user, password, dbname, sslmode,
	), nil
}

func lookup(settings SettingsReader, key, fallback string) string {
	if value, ok := settings.TryGet(key); ok && value != "" {
		return value
	}
	return fallback
}
