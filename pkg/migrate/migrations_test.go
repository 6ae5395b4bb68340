package migrate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
	if err := migrate.ValidateFS(migrate.Embedded, "migrations"); err != nil {
		t.Fatalf("ValidateFS: %v", err)
	}

	data, err := migrate.Embedded.ReadFile("migrations/20260301120000_create_collections.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS collections",
		"collection_key TEXT PRIMARY KEY",
		"DROP TABLE IF EXISTS collections",
	} {
		if !strings.Contains(string(data), sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRunEmbeddedOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate.RunEmbedded(context.Background(), sqlDB, config.DBDriverSQLite, "up"); err != nil {
		t.Fatalf("RunEmbedded up: %v", err)
	}
	if !conn.Migrator().HasTable("collections") {
		t.Fatalf("expected collections table after migration")
	}
}

func TestDialectFor(t *testing.T) {
	if d, _ := migrate.DialectFor(config.DBDriverPostgres); d != "postgres" {
		t.Fatalf("unexpected postgres dialect %q", d)
	}
	if d, _ := migrate.DialectFor(config.DBDriverSQLite); d != "sqlite3" {
		t.Fatalf("unexpected sqlite dialect %q", d)
	}
	if _, err := migrate.DialectFor("mssql"); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}
