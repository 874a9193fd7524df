package repository

import (
	"context"
	"database/sql"

	"github.com/markreg/caseflow/internal/infrastructure/persistence/sqlite"
)

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// getExecutor returns the active transaction when the context carries one,
// otherwise the bare connection pool
func getExecutor(ctx context.Context, db *sql.DB) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
