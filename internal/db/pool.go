// Package db provides the Postgres connection and shared bulk-load helpers.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Pool is what the loader needs from *pgxpool.Pool: every statement runs
// inside one transaction. pgxmock pools satisfy it in tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Copier is anything that can run a COPY: a pool, a connection or a transaction.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}
