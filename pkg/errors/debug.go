package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
)

// ErrorDump is the log-only view of an error chain. It never reaches clients.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	// Backend names the store driver that raised the innermost error.
	Backend    string `json:"backend,omitempty"`
	DriverCode string `json:"driver_code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"driver_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.Backend = "postgres"
		d.DriverCode = pgxErr.Code
		d.Constraint = pgxErr.ConstraintName
		d.Table = pgxErr.TableName
		d.Detail = pgxErr.Detail
		d.Message = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.Backend = "postgres"
		d.DriverCode = string(pqErr.Code)
		d.Constraint = pqErr.Constraint
		d.Table = pqErr.Table
		d.Detail = pqErr.Detail
		d.Message = pqErr.Message
		return d
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		d.Backend = "sqlite"
		d.DriverCode = fmt.Sprintf("%d/%d", int(liteErr.Code), int(liteErr.ExtendedCode))
		d.Message = liteErr.Error()
		return d
	}

	var rdErr redis.Error
	if errors.As(err, &rdErr) {
		d.Backend = "redis"
		d.Message = rdErr.Error()
	}
	return d
}
