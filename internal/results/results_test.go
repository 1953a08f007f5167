package results_test

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/internal/results"
	"github.com/JaimeStill/inspector/pkg/lifecycle"
	"github.com/JaimeStill/inspector/pkg/metrics"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/storage"
)

type fakeInspections struct {
	inspections.System
	header *inspections.Inspection
}

func (f *fakeInspections) Find(ctx context.Context, id string) (*inspections.Inspection, error) {
	if f.header == nil || f.header.ID != id {
		return nil, inspections.ErrNotFound
	}
	return f.header, nil
}

type fakeStorage struct {
	blobs map[string][]byte
}

func (f *fakeStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (*storage.Blob, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{Body: io.NopCloser(bytes.NewReader(data)), ContentType: "image/jpeg", ContentLength: int64(len(data))}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

func (f *fakeStorage) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	var objects []storage.Object
	for key, data := range f.blobs {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, storage.Object{Key: key, ContentType: "image/jpeg", Size: int64(len(data))})
		}
	}
	slices.SortFunc(objects, func(a, b storage.Object) int { return strings.Compare(a.Key, b.Key) })
	return objects, nil
}

func header(status string) *inspections.Inspection {
	return &inspections.Inspection{ID: "INS-7", SampleQty: 2, Status: status}
}

type fixture struct {
	sys     results.System
	mock    sqlmock.Sqlmock
	store   *fakeStorage
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, h *inspections.Inspection) fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := metrics.New()
	require.NoError(t, err)

	store := &fakeStorage{blobs: map[string][]byte{}}
	sys := results.New(db, store, &fakeInspections{header: h}, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return fixture{sys: sys, mock: mock, store: store, metrics: m}
}

func inserted(v bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"inserted"}).AddRow(v)
}

func TestUpsertIsIdempotentPerKey(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))

	first := results.UpsertCommand{
		Inspector: "R. Ortiz",
		Samples: map[string]map[string]results.Entry{
			"sample_2": {"VQ-001": {Answer: checks.Pass}},
		},
	}
	second := results.UpsertCommand{
		Inspector: "R. Ortiz",
		Samples: map[string]map[string]results.Entry{
			"2": {"VQ-001": {Answer: checks.Fail, Notes: "crack in casting"}},
		},
	}

	f.mock.ExpectQuery(`INSERT INTO visual_results\(.+\)\s+VALUES .+ON CONFLICT \(inspection_id, sample_no, question_id\) DO UPDATE`).
		WithArgs("INS-7", "VQ-001", "Pass", "", nil, "R. Ortiz", 2).
		WillReturnRows(inserted(true))
	f.mock.ExpectQuery(`INSERT INTO visual_results`).
		WithArgs("INS-7", "VQ-001", "Fail", "crack in casting", nil, "R. Ortiz", 2).
		WillReturnRows(inserted(false))

	r1, err := f.sys.Upsert(context.Background(), checks.Visual, "INS-7", first)
	require.NoError(t, err)
	assert.Equal(t, results.UpsertResult{Inserted: 1}, *r1)

	r2, err := f.sys.Upsert(context.Background(), checks.Visual, "INS-7", second)
	require.NoError(t, err)
	assert.Equal(t, results.UpsertResult{Updated: 1}, *r2)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ResultsWritten.WithLabelValues("visual", metrics.OpInsert)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ResultsWritten.WithLabelValues("visual", metrics.OpUpdate)))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpsertDocumentDefaultsNotAnswered(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))

	cmd := results.UpsertCommand{
		Inspector: "R. Ortiz",
		Results: map[string]results.Entry{
			"DQ-002": {},
			"DQ-001": {Answer: checks.Pass},
		},
	}

	f.mock.ExpectQuery(`INSERT INTO document_results\(inspection_id, question_id, answer, notes, photo_key, inspector\)`).
		WithArgs("INS-7", "DQ-001", "Pass", "", nil, "R. Ortiz").
		WillReturnRows(inserted(true))
	f.mock.ExpectQuery(`ON CONFLICT \(inspection_id, question_id\)`).
		WithArgs("INS-7", "DQ-002", "Not Answered", "", nil, "R. Ortiz").
		WillReturnRows(inserted(true))

	res, err := f.sys.Upsert(context.Background(), checks.Document, "INS-7", cmd)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Inserted)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpsertDropsNotesUnlessFail(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))

	cmd := results.UpsertCommand{
		Inspector: "R. Ortiz",
		Results: map[string]results.Entry{
			"DQ-001": {Answer: checks.Pass, Notes: "looks fine"},
			"DQ-002": {Answer: checks.NA, Notes: "not stamped"},
		},
	}

	f.mock.ExpectQuery(`INSERT INTO document_results`).
		WithArgs("INS-7", "DQ-001", "Pass", "", nil, "R. Ortiz").
		WillReturnRows(inserted(true))
	f.mock.ExpectQuery(`INSERT INTO document_results`).
		WithArgs("INS-7", "DQ-002", "NA", "", nil, "R. Ortiz").
		WillReturnRows(inserted(true))

	res, err := f.sys.Upsert(context.Background(), checks.Document, "INS-7", cmd)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Inserted)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpsertPartialFailureReportsApplied(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))

	cmd := results.UpsertCommand{
		Samples: map[string]map[string]results.Entry{
			"1": {"DM-001": {Answer: checks.Pass}, "DM-002": {Answer: checks.Pass}},
		},
	}

	f.mock.ExpectQuery(`INSERT INTO dimension_results`).WillReturnRows(inserted(true))
	f.mock.ExpectQuery(`INSERT INTO dimension_results`).WillReturnError(sql.ErrConnDone)

	res, err := f.sys.Upsert(context.Background(), checks.Dimension, "INS-7", cmd)
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, 1, res.Inserted)
}

func TestUpsertMapsConstraintViolations(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"inspection removed", repository.CodeForeignKey, inspections.ErrNotFound},
		{"answer rejected", repository.CodeCheck, results.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, header(inspections.StatusInProgress))
			cmd := results.UpsertCommand{
				Samples: map[string]map[string]results.Entry{
					"1": {"DM-001": {Answer: checks.Pass}},
				},
			}

			f.mock.ExpectQuery(`INSERT INTO dimension_results`).WillReturnError(&pgconn.PgError{Code: tt.code})

			_, err := f.sys.Upsert(context.Background(), checks.Dimension, "INS-7", cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpsertRejections(t *testing.T) {
	tests := []struct {
		name   string
		header *inspections.Inspection
		check  checks.Type
		cmd    results.UpsertCommand
		want   error
	}{
		{
			name:   "missing inspection",
			header: nil,
			check:  checks.Visual,
			want:   inspections.ErrNotFound,
		},
		{
			name:   "completed inspection",
			header: header(inspections.StatusCompleted),
			check:  checks.Visual,
			want:   inspections.ErrCompleted,
		},
		{
			name:   "sample beyond sample qty",
			header: header(inspections.StatusInProgress),
			check:  checks.Visual,
			cmd:    results.UpsertCommand{Samples: map[string]map[string]results.Entry{"sample_3": {"VQ-1": {}}}},
			want:   results.ErrInvalidPayload,
		},
		{
			name:   "bad label",
			header: header(inspections.StatusInProgress),
			check:  checks.Functional,
			cmd:    results.UpsertCommand{Samples: map[string]map[string]results.Entry{"first": {"FQ-1": {}}}},
			want:   results.ErrInvalidPayload,
		},
		{
			name:   "document with samples",
			header: header(inspections.StatusInProgress),
			check:  checks.Document,
			cmd:    results.UpsertCommand{Samples: map[string]map[string]results.Entry{"1": {"DQ-1": {}}}},
			want:   results.ErrInvalidPayload,
		},
		{
			name:   "foreign photo key",
			header: header(inspections.StatusInProgress),
			check:  checks.Document,
			cmd:    results.UpsertCommand{Results: map[string]results.Entry{"DQ-1": {Answer: checks.Fail, Notes: "torn", PhotoKey: "inspections/INS-8/x/p.jpg"}}},
			want:   results.ErrInvalidPayload,
		},
		{
			name:   "fail without notes",
			header: header(inspections.StatusInProgress),
			check:  checks.Visual,
			cmd:    results.UpsertCommand{Samples: map[string]map[string]results.Entry{"1": {"VQ-001": {Answer: checks.Fail, Notes: "  "}}}},
			want:   results.ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.header)

			_, err := f.sys.Upsert(context.Background(), tt.check, "INS-7", tt.cmd)
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestReadGroupsBySample(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))

	cols := []string{"id", "inspection_id", "sample_no", "question_id", "answer", "notes", "photo_key", "inspector", "complete", "updated_at"}
	photo := "inspections/INS-7/a/crack.jpg"
	now := time.Now()
	f.mock.ExpectQuery(`SELECT .+ FROM public.visual_results r WHERE r.inspection_id = \$1 ORDER BY r.sample_no ASC, r.question_id ASC`).
		WithArgs("INS-7").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("6f1c1f8e-8d7e-4bd5-9b5d-0c3f9c1c1a01", "INS-7", 1, "VQ-001", "Pass", "", nil, "R. Ortiz", false, now).
			AddRow("6f1c1f8e-8d7e-4bd5-9b5d-0c3f9c1c1a02", "INS-7", 2, "VQ-001", "Fail", "crack in casting", photo, "R. Ortiz", false, now))

	read, err := f.sys.Read(context.Background(), checks.Visual, "INS-7")
	require.NoError(t, err)

	require.Len(t, read.Samples, 2)
	assert.Equal(t, checks.Fail, read.Samples[2]["VQ-001"].Answer)

	entries := read.Sample(2)
	assert.Equal(t, results.Entry{Answer: checks.Fail, Notes: "crack in casting", PhotoKey: photo}, entries["VQ-001"])
	assert.Nil(t, read.Sample(3))
}

func TestMarkCompleteTouchesAllTables(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for _, table := range []string{"document_results", "visual_results", "dimension_results", "functional_results"} {
		mock.ExpectExec(`UPDATE ` + table + ` SET complete = TRUE`).
			WithArgs("INS-7").
			WillReturnResult(sqlmock.NewResult(0, 3))
	}

	tx, err := db.Begin()
	require.NoError(t, err)

	n, err := f.sys.MarkComplete(context.Background(), tx, "INS-7")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachStoresUnderInspectionPrefix(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))

	a, err := f.sys.Attach(context.Background(), "INS-7", results.AttachCommand{
		Data:        []byte("jpeg-bytes"),
		Filename:    "../../crack photo.jpg",
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.Key, "inspections/INS-7/"))
	assert.True(t, strings.HasSuffix(a.Key, "/crack%20photo.jpg"))
	assert.Equal(t, int64(10), a.SizeBytes)
	assert.Contains(t, f.store.blobs, a.Key)

	blob, err := f.sys.Attachment(context.Background(), a.Key)
	require.NoError(t, err)
	defer blob.Body.Close()
	body, _ := io.ReadAll(blob.Body)
	assert.Equal(t, "jpeg-bytes", string(body))
}

func TestAttachmentsListsInspectionFiles(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))
	f.store.blobs["inspections/INS-8/other.jpg"] = []byte("x")

	for _, name := range []string{"b side.jpg", "a.pdf"} {
		_, err := f.sys.Attach(context.Background(), "INS-7", results.AttachCommand{
			Data:        []byte("data"),
			Filename:    name,
			ContentType: "image/jpeg",
		})
		require.NoError(t, err)
	}

	list, err := f.sys.Attachments(context.Background(), "INS-7")
	require.NoError(t, err)
	require.Len(t, list, 2)

	names := []string{list[0].Filename, list[1].Filename}
	assert.ElementsMatch(t, []string{"b side.jpg", "a.pdf"}, names)
	for _, a := range list {
		assert.True(t, strings.HasPrefix(a.Key, "inspections/INS-7/"))
		assert.Equal(t, int64(4), a.SizeBytes)
	}

	_, err = f.sys.Attachments(context.Background(), "INS-404")
	assert.ErrorIs(t, err, inspections.ErrNotFound)
}

func TestAttachmentRejectsForeignKeys(t *testing.T) {
	f := newFixture(t, header(inspections.StatusInProgress))

	_, err := f.sys.Attachment(context.Background(), "documents/secret.pdf")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}
