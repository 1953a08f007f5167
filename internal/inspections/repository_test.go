package inspections_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

var columns = []string{
	"id", "inspection_date", "po_number", "release_number", "series", "product_code",
	"order_qty", "lot_qty", "sample_qty", "inspector", "status", "created_at", "updated_at",
}

func newRepo(t *testing.T) (inspections.System, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sys := inspections.New(db, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
	return sys, mock
}

func row(status string) *sqlmock.Rows {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		"INS-7", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "45001234", "3", "G4", "G4-200-150",
		50, 50, 2, "R. Ortiz", status, now, now,
	)
}

func TestRepoCreate(t *testing.T) {
	sys, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO inspections`).
		WithArgs(sqlmock.AnyArg(), "45001234", "3", "G4", "G4-200-150", 50, 50, 2, "").
		WillReturnRows(row(inspections.StatusInProgress))
	mock.ExpectCommit()

	i, err := sys.Create(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, "INS-7", i.ID)
	assert.Equal(t, inspections.StatusInProgress, i.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateInvalidSkipsDatabase(t *testing.T) {
	sys, mock := newRepo(t)

	cmd := validCommand()
	cmd.SampleQty = 0

	_, err := sys.Create(context.Background(), cmd)
	assert.ErrorIs(t, err, inspections.ErrInvalidHeader)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func recorded(series string, maxSample int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"series", "max"}).AddRow(series, maxSample)
}

const recordedQuery = `SELECT i.series, COALESCE\(MAX\(r.sample_no\), 0\)`

func TestRepoUpdateCompleted(t *testing.T) {
	sys, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(recordedQuery).WithArgs("INS-7").WillReturnRows(recorded("G4", 0))
	mock.ExpectQuery(`UPDATE inspections`).WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectRollback()
	mock.ExpectQuery(`SELECT .+ FROM public.inspections i WHERE i.id = \$1`).
		WithArgs("INS-7").
		WillReturnRows(row(inspections.StatusCompleted))

	_, err := sys.Update(context.Background(), "INS-7", validCommand())
	assert.ErrorIs(t, err, inspections.ErrCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdateMissing(t *testing.T) {
	sys, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(recordedQuery).WithArgs("INS-404").WillReturnRows(sqlmock.NewRows([]string{"series", "max"}))
	mock.ExpectQuery(`UPDATE inspections`).WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectRollback()
	mock.ExpectQuery(`SELECT .+ FROM public.inspections i`).
		WithArgs("INS-404").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := sys.Update(context.Background(), "INS-404", validCommand())
	assert.ErrorIs(t, err, inspections.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdateRecordedSamples(t *testing.T) {
	tests := []struct {
		name      string
		series    string
		maxSample int
		edit      func(*inspections.HeaderCommand)
		wantErr   error
	}{
		{"sample qty covers recorded", "G4", 2, func(c *inspections.HeaderCommand) { c.ReleaseNumber = "4" }, nil},
		{"sample qty below recorded", "G4", 2, func(c *inspections.HeaderCommand) { c.SampleQty = 1 }, inspections.ErrResultsRecorded},
		{"series change with samples", "G4", 1, func(c *inspections.HeaderCommand) { c.Series = "G5" }, inspections.ErrResultsRecorded},
		{"series change without samples", "G4", 0, func(c *inspections.HeaderCommand) { c.Series = "G5" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, mock := newRepo(t)

			cmd := validCommand()
			tt.edit(&cmd)

			mock.ExpectBegin()
			mock.ExpectQuery(recordedQuery).WithArgs("INS-7").WillReturnRows(recorded(tt.series, tt.maxSample))
			if tt.wantErr == nil {
				mock.ExpectQuery(`UPDATE inspections`).WillReturnRows(row(inspections.StatusInProgress))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			_, err := sys.Update(context.Background(), "INS-7", cmd)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepoList(t *testing.T) {
	sys, mock := newRepo(t)

	status := inspections.StatusInProgress
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM public.inspections i WHERE i.status = \$1`).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY i.created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs(status).
		WillReturnRows(row(status))

	result, err := sys.List(context.Background(), pagination.PageRequest{}, inspections.Filters{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "G4", result.Data[0].Series)
	assert.NoError(t, mock.ExpectationsWereMet())
}
