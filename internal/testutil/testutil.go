package testutil

import (
	"database/sql"
	"testing"
	"time"

	"taskManagement/internal/auth"
	"taskManagement/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The name keeps shared-cache databases isolated between tests; the DB is
// closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SessionToken returns a signed session token for the given user id.
func SessionToken(t *testing.T, secret string, userID int64) string {
	t.Helper()
	tok, err := auth.IssueToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}
