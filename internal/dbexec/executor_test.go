package dbexec

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow(1, []byte("alice")).
			AddRow(2, nil),
	)

	exec := NewStandardExecutor(db)
	rows, err := exec.QueryContext(context.Background(), "SELECT id, display_name FROM users")
	require.NoError(t, err)
	defer rows.Close()

	keyFor := func(col string) string {
		if col == "display_name" {
			return "displayName"
		}
		return col
	}
	scanned, err := ScanRows(rows, []string{"id", "display_name"}, keyFor)
	require.NoError(t, err)
	require.Len(t, scanned, 2)

	assert.EqualValues(t, 1, scanned[0]["id"])
	assert.Equal(t, "alice", scanned[0]["displayName"], "[]byte normalized to string under the mapped key")
	assert.Nil(t, scanned[1]["displayName"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStandardExecutor_NilDB(t *testing.T) {
	exec := NewStandardExecutor(nil)

	_, err := exec.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrConnDone)

	_, err = exec.ExecContext(context.Background(), "DELETE FROM x")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
