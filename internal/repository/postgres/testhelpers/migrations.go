package testhelpers

import (
	"context"
	"testing"

	"github.com/geostore-service/internal/repository/postgres"
)

// ApplyMigrations applies the embedded schema; skips the test when the
// database lacks the required extensions.
func ApplyMigrations(t *testing.T, tdb *TestDB) {
	t.Helper()

	db := postgres.NewDBForTest(tdb.DB, tdb.Logger)
	if err := db.Migrate(context.Background()); err != nil {
		t.Skipf("cannot apply migrations (pgrouting missing?): %v", err)
	}
}
