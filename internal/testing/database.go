package testing

import (
	"context"
	"database/sql"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/teranos/obelisk/db"
)

// CreateTestDB creates an in-memory SQLite test database with foreign keys
// enforced and the given tables created in order.
// Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T, tables ...db.Table) *sql.DB {
	t.Helper()

	testDB, err := db.Open(":memory:", zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	if len(tables) > 0 {
		if err := db.ApplySchema(context.Background(), testDB, tables, nil); err != nil {
			t.Fatalf("Failed to create tables: %v", err)
		}
	}

	return testDB
}
