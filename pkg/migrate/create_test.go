package migrate_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/migrate"
)

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	path, err := migrate.CreateSQLMigration(dir, "Add Event Log!", now)
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if filepath.Base(path) != "20260302093000_add_event_log.sql" {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "add event log", now); err == nil {
		t.Fatalf("expected duplicate migration to fail")
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!", now); err == nil {
		t.Fatalf("expected empty sanitized name to fail")
	}
}
