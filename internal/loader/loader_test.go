package loader

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/kobo-sync/internal/survey"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func anyArgs() []any {
	args := make([]any, len(Columns))
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func testFrame() *survey.Frame {
	return &survey.Frame{
		Columns: []string{"outlet_code", "phone", "price", "estimated_weekly_sales", "stock_on_hand", "total_sales"},
		Rows: [][]any{
			{"OUT1", "000612345", 12.5, 3.0, int64(7), 37.5},
			{"OUT2", "", 0.0, 0.0, int64(0), 0.0},
		},
	}
}

func expectDDL(mock pgxmock.PgxPoolIface) {
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS "product_collection"`).
		WillReturnResult(pgxmock.NewResult("CREATE SCHEMA", 0))
	mock.ExpectExec(`DROP TABLE IF EXISTS "product_collection"\."product_data"`).
		WillReturnResult(pgxmock.NewResult("DROP TABLE", 0))
	mock.ExpectExec(`CREATE TABLE "product_collection"\."product_data"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeInsert, m)

	m, err = ParseMode("copy")
	require.NoError(t, err)
	assert.Equal(t, ModeCopy, m)

	_, err = ParseMode("upsert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown load mode")
}

func TestNew_Defaults(t *testing.T) {
	l := New(nil, Options{})
	assert.Equal(t, "product_collection", l.opts.Schema)
	assert.Equal(t, "product_data", l.opts.Table)
	assert.Equal(t, ModeInsert, l.opts.Mode)
}

func TestLoad_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectDDL(mock)
	mock.ExpectExec(`INSERT INTO "product_collection"\."product_data"`).
		WithArgs(anyArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO "product_collection"\."product_data"`).
		WithArgs(anyArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := New(mock, Options{}).Load(context.Background(), testFrame())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_InsertSendsRowValues(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	f := &survey.Frame{Columns: []string{"outlet_code", "price"}, Rows: [][]any{{"OUT9", 2.5}}}
	want := make([]any, len(Columns))
	for i, c := range Columns {
		switch c.Name {
		case "outlet_code":
			want[i] = "OUT9"
		case "price":
			want[i] = 2.5
		}
	}

	expectDDL(mock)
	mock.ExpectExec(`INSERT INTO`).WithArgs(want...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := New(mock, Options{}).Load(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_EmptyFrameStillRecreatesTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectDDL(mock)
	mock.ExpectCommit()

	n, err := New(mock, Options{}).Load(context.Background(), &survey.Frame{Columns: []string{"phone"}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_Copy(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectDDL(mock)
	mock.ExpectCopyFrom(pgx.Identifier{"product_collection", "product_data"}, ColumnNames()).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := New(mock, Options{Mode: ModeCopy}).Load(context.Background(), testFrame())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_CustomTarget(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS "staging"`).WillReturnResult(pgxmock.NewResult("CREATE SCHEMA", 0))
	mock.ExpectExec(`DROP TABLE IF EXISTS "staging"\."kobo"`).WillReturnResult(pgxmock.NewResult("DROP TABLE", 0))
	mock.ExpectExec(`CREATE TABLE "staging"\."kobo"`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCommit()

	_, err = New(mock, Options{Schema: "staging", Table: "kobo"}).Load(context.Background(), &survey.Frame{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("connection reset"))

	_, err = New(mock, Options{}).Load(context.Background(), testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader: begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_DDLErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE SCHEMA`).WillReturnError(fmt.Errorf("permission denied"))
	mock.ExpectRollback()

	_, err = New(mock, Options{}).Load(context.Background(), testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader: create schema product_collection")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_InsertErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectDDL(mock)
	mock.ExpectExec(`INSERT INTO`).WithArgs(anyArgs()...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO`).WithArgs(anyArgs()...).WillReturnError(fmt.Errorf("value too long"))
	mock.ExpectRollback()

	_, err = New(mock, Options{}).Load(context.Background(), testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader: insert row 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_CopyErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectDDL(mock)
	mock.ExpectCopyFrom(pgx.Identifier{"product_collection", "product_data"}, ColumnNames()).
		WillReturnError(fmt.Errorf("copy aborted"))
	mock.ExpectRollback()

	_, err = New(mock, Options{Mode: ModeCopy}).Load(context.Background(), testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO product_collection.product_data")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_CommitError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectDDL(mock)
	mock.ExpectCommit().WillReturnError(fmt.Errorf("serialization failure"))

	_, err = New(mock, Options{}).Load(context.Background(), &survey.Frame{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader: commit")
}
