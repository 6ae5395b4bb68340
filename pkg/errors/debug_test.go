package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpPostgres(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "collections_pkey", TableName: "collections", Message: "duplicate key"}
	err := Wrap(CodeDependency, fmt.Errorf("commit: %w", pgErr), "storage unavailable")

	d := Dump(err)
	assert.Equal(t, CodeDependency, d.Code)
	assert.Equal(t, "postgres", d.Backend)
	assert.Equal(t, "23505", d.DriverCode)
	assert.Equal(t, "collections_pkey", d.Constraint)
	assert.Equal(t, "collections", d.Table)
	require.Len(t, d.Chain, 3)
}

func TestDumpSQLite(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}
	d := Dump(fmt.Errorf("upsert: %w", liteErr))

	assert.Equal(t, "sqlite", d.Backend)
	assert.Equal(t, "19/1555", d.DriverCode)
	assert.Empty(t, d.Code)
}

func TestDumpRedis(t *testing.T) {
	d := Dump(Wrap(CodeDependency, redis.Nil, "read collection"))
	assert.Equal(t, "redis", d.Backend)
	assert.Equal(t, CodeDependency, d.Code)
}

func TestDumpPlainError(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))

	d := Dump(fmt.Errorf("boom"))
	assert.Equal(t, "boom", d.TopMessage)
	assert.Empty(t, d.Backend)
	assert.Len(t, d.Chain, 1)
}
