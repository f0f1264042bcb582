// Package loader writes a normalized survey frame into PostgreSQL.
package loader

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kobo-sync/internal/db"
	"github.com/sells-group/kobo-sync/internal/survey"
)

// Mode selects how rows are sent to the table.
type Mode string

const (
	// ModeInsert issues one parameterized INSERT per row.
	ModeInsert Mode = "insert"
	// ModeCopy streams every row through the COPY protocol.
	ModeCopy Mode = "copy"
)

// ParseMode validates a mode name. The empty string selects ModeInsert.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeInsert:
		return ModeInsert, nil
	case ModeCopy:
		return ModeCopy, nil
	default:
		return "", eris.Errorf("loader: unknown load mode %q (want insert or copy)", s)
	}
}

// Options configures the target table.
type Options struct {
	Schema string
	Table  string
	Mode   Mode
}

// Loader recreates the target table and fills it from a frame.
type Loader struct {
	pool db.Pool
	opts Options
	log  *zap.Logger
}

// New creates a Loader. Empty options fall back to product_collection.product_data
// in insert mode.
func New(pool db.Pool, opts Options) *Loader {
	if opts.Schema == "" {
		opts.Schema = "product_collection"
	}
	if opts.Table == "" {
		opts.Table = "product_data"
	}
	if opts.Mode == "" {
		opts.Mode = ModeInsert
	}
	return &Loader{
		pool: pool,
		opts: opts,
		log:  zap.L().With(zap.String("component", "loader")),
	}
}

// Load drops and recreates the table, then writes every row of f, all in one
// transaction. Nothing persists unless every statement succeeds.
func (l *Loader) Load(ctx context.Context, f *survey.Frame) (int64, error) {
	schema, table := l.opts.Schema, l.opts.Table

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "loader: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, createSchemaSQL(schema)); err != nil {
		return 0, eris.Wrapf(err, "loader: create schema %s", schema)
	}
	if _, err := tx.Exec(ctx, dropTableSQL(schema, table)); err != nil {
		return 0, eris.Wrapf(err, "loader: drop table %s.%s", schema, table)
	}
	if _, err := tx.Exec(ctx, createTableSQL(schema, table)); err != nil {
		return 0, eris.Wrapf(err, "loader: create table %s.%s", schema, table)
	}

	var n int64
	switch l.opts.Mode {
	case ModeCopy:
		n, err = l.copyRows(ctx, tx, f)
	default:
		n, err = l.insertRows(ctx, tx, f)
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "loader: commit")
	}

	l.log.Info("table loaded",
		zap.String("table", schema+"."+table),
		zap.String("mode", string(l.opts.Mode)),
		zap.Int64("rows", n),
	)
	return n, nil
}

func (l *Loader) insertRows(ctx context.Context, tx pgx.Tx, f *survey.Frame) (int64, error) {
	query := insertSQL(l.opts.Schema, l.opts.Table)
	idx := sourceIndexes(f)

	var n int64
	for r, row := range f.Rows {
		if _, err := tx.Exec(ctx, query, rowValues(row, idx)...); err != nil {
			return 0, eris.Wrapf(err, "loader: insert row %d", r+1)
		}
		n++
	}
	return n, nil
}

func (l *Loader) copyRows(ctx context.Context, tx pgx.Tx, f *survey.Frame) (int64, error) {
	idx := sourceIndexes(f)
	rows := make([][]any, len(f.Rows))
	for r, row := range f.Rows {
		rows[r] = rowValues(row, idx)
	}
	return db.CopyFromSchema(ctx, tx, l.opts.Schema, l.opts.Table, ColumnNames(), rows)
}
