package postgres

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// MockDB pairs a sqlmock connection with a HistoryStore reading and writing through it.
type MockDB struct {
	Mock  sqlmock.Sqlmock
	DB    *sql.DB
	Store *HistoryStore
}

// NewMockDB opens a sqlmock connection that is closed when t finishes.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &MockDB{Mock: mock, DB: db, Store: NewHistoryStore(db)}
}

// ExpectSchema expects the settings_load_history table to be created.
func (m *MockDB) ExpectSchema() *sqlmock.ExpectedExec {
	return m.Mock.ExpectExec("CREATE TABLE IF NOT EXISTS settings_load_history").
		WillReturnResult(sqlmock.NewResult(0, 0))
}

// ExpectHistoryInsert expects one load history row for runID.
func (m *MockDB) ExpectHistoryInsert(runID string) *sqlmock.ExpectedExec {
	return m.Mock.ExpectExec("INSERT INTO settings_load_history").
		WithArgs(runID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg())
}
