package results

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/pkg/metrics"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/storage"
)

const keyPrefix = "inspections/"

type repo struct {
	db          *sql.DB
	storage     storage.System
	inspections inspections.System
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New creates a result store implementing the System interface.
// m may be nil.
func New(
	db *sql.DB,
	store storage.System,
	insp inspections.System,
	m *metrics.Metrics,
	logger *slog.Logger,
) System {
	return &repo{
		db:          db,
		storage:     store,
		inspections: insp,
		metrics:     m,
		logger:      logger.With("system", "results"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

type leaf struct {
	sampleNo   int
	questionID string
	entry      Entry
}

func (r *repo) Upsert(ctx context.Context, check checks.Type, inspectionID string, cmd UpsertCommand) (*UpsertResult, error) {
	if !check.Valid() {
		return nil, checks.ErrInvalidType
	}

	insp, err := r.inspections.Find(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp.Completed() {
		return nil, inspections.ErrCompleted
	}

	leaves, err := flatten(check, insp, cmd)
	if err != nil {
		return nil, err
	}

	q := upsertSQL(check)
	inspector := strings.TrimSpace(cmd.Inspector)
	result := &UpsertResult{}

	for _, l := range leaves {
		var photo *string
		if l.entry.PhotoKey != "" {
			photo = &l.entry.PhotoKey
		}

		args := []any{inspectionID, l.questionID, l.entry.Answer, l.entry.Notes, photo, inspector}
		if check.Sampled() {
			args = append(args, l.sampleNo)
		}

		inserted, err := repository.QueryOne(ctx, r.db, q, args, scanInserted)
		if err != nil {
			switch {
			case repository.IsForeignKey(err):
				err = inspections.ErrNotFound
			case repository.IsCheck(err):
				err = invalid("%s answer %q rejected by the store", l.questionID, l.entry.Answer)
			}
			r.logger.Warn(
				"result upsert interrupted",
				"inspection_id", inspectionID,
				"check", check,
				"applied", result.Inserted+result.Updated,
				"remaining", len(leaves)-result.Inserted-result.Updated,
			)
			return result, fmt.Errorf("upsert %s result %s: %w", check, l.questionID, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		r.metrics.Written(string(check), inserted)
	}

	r.logger.Info(
		"results saved",
		"inspection_id", inspectionID,
		"check", check,
		"inserted", result.Inserted,
		"updated", result.Updated,
	)
	return result, nil
}

// flatten validates cmd against the check shape and the inspection's sample
// size, returning leaves in sample then question order.
func flatten(check checks.Type, insp *inspections.Inspection, cmd UpsertCommand) ([]leaf, error) {
	var leaves []leaf

	add := func(sampleNo int, entries map[string]Entry) error {
		for qid, e := range entries {
			qid = strings.TrimSpace(qid)
			if qid == "" {
				return invalid("empty question id")
			}
			if e.Answer == "" {
				e.Answer = checks.NotAnswered
			}
			switch e.Answer {
			case checks.Fail:
				if strings.TrimSpace(e.Notes) == "" {
					return invalid("%s: notes are required when the answer is Fail", qid)
				}
			case checks.Pass, checks.NA:
				e.Notes = ""
			}
			if e.PhotoKey != "" && !strings.HasPrefix(e.PhotoKey, attachmentPrefix(insp.ID)) {
				return invalid("photo %q does not belong to %s", e.PhotoKey, insp.ID)
			}
			leaves = append(leaves, leaf{sampleNo: sampleNo, questionID: qid, entry: e})
		}
		return nil
	}

	if check.Sampled() {
		if len(cmd.Results) > 0 {
			return nil, invalid("%s results must be keyed by sample", check)
		}
		for label, entries := range cmd.Samples {
			n, err := ParseSampleLabel(label)
			if err != nil {
				return nil, err
			}
			if n > insp.SampleQty {
				return nil, invalid("sample %d exceeds sample quantity %d", n, insp.SampleQty)
			}
			if err := add(n, entries); err != nil {
				return nil, err
			}
		}
	} else {
		if len(cmd.Samples) > 0 {
			return nil, invalid("document results have no sample axis")
		}
		if err := add(0, cmd.Results); err != nil {
			return nil, err
		}
	}

	slices.SortFunc(leaves, func(a, b leaf) int {
		if a.sampleNo != b.sampleNo {
			return a.sampleNo - b.sampleNo
		}
		return strings.Compare(a.questionID, b.questionID)
	})
	return leaves, nil
}

func (r *repo) Read(ctx context.Context, check checks.Type, inspectionID string) (*ReadResult, error) {
	records, err := r.List(ctx, check, inspectionID)
	if err != nil {
		return nil, err
	}

	out := &ReadResult{InspectionID: inspectionID, Check: check}
	if check.Sampled() {
		out.Samples = make(map[int]map[string]Record)
		for _, rec := range records {
			if out.Samples[rec.SampleNo] == nil {
				out.Samples[rec.SampleNo] = make(map[string]Record)
			}
			out.Samples[rec.SampleNo][rec.QuestionID] = rec
		}
	} else {
		out.Results = make(map[string]Record, len(records))
		for _, rec := range records {
			out.Results[rec.QuestionID] = rec
		}
	}
	return out, nil
}

func (r *repo) List(ctx context.Context, check checks.Type, inspectionID string) ([]Record, error) {
	if !check.Valid() {
		return nil, checks.ErrInvalidType
	}

	q, args := query.
		NewBuilder(projections[check], defaultSort(check)...).
		WhereEquals("InspectionID", &inspectionID).
		Build()

	records, err := repository.QueryMany(ctx, r.db, q, args, scanner(check))
	if err != nil {
		return nil, fmt.Errorf("query %s results: %w", check, err)
	}
	return records, nil
}

func (r *repo) Counts(ctx context.Context, check checks.Type, inspectionID string) (*Counts, error) {
	records, err := r.List(ctx, check, inspectionID)
	if err != nil {
		return nil, err
	}
	c := Count(check, records)
	return &c, nil
}

func (r *repo) MarkComplete(ctx context.Context, tx *sql.Tx, inspectionID string) (int64, error) {
	var total int64
	for _, check := range checks.Types() {
		n, err := repository.ExecCount(
			ctx, tx,
			fmt.Sprintf("UPDATE %s SET complete = TRUE, updated_at = NOW() WHERE inspection_id = $1", table(check)),
			inspectionID,
		)
		if err != nil {
			return total, fmt.Errorf("mark %s results complete: %w", check, err)
		}
		total += n
	}
	return total, nil
}

func (r *repo) Attach(ctx context.Context, inspectionID string, cmd AttachCommand) (*Attachment, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrInvalidFile
	}
	if _, err := r.inspections.Find(ctx, inspectionID); err != nil {
		return nil, err
	}

	filename := sanitizeFilename(cmd.Filename)
	key := buildStorageKey(inspectionID, uuid.New(), filename)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload attachment blob: %w", err)
	}

	a := &Attachment{
		Key:         key,
		Filename:    filepath.Base(cmd.Filename),
		ContentType: cmd.ContentType,
		SizeBytes:   int64(len(cmd.Data)),
		PageCount:   cmd.PageCount,
	}

	r.logger.Info("attachment stored", "inspection_id", inspectionID, "key", key, "size", a.SizeBytes)
	return a, nil
}

func (r *repo) Attachment(ctx context.Context, key string) (*storage.Blob, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(key, keyPrefix) {
		return nil, storage.ErrInvalidKey
	}
	return r.storage.Download(ctx, key)
}

func (r *repo) Attachments(ctx context.Context, inspectionID string) ([]Attachment, error) {
	if _, err := r.inspections.Find(ctx, inspectionID); err != nil {
		return nil, err
	}

	objects, err := r.storage.List(ctx, attachmentPrefix(inspectionID))
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	out := make([]Attachment, 0, len(objects))
	for _, obj := range objects {
		a := Attachment{
			Key:         obj.Key,
			Filename:    originalFilename(obj.Key),
			ContentType: obj.ContentType,
			SizeBytes:   obj.Size,
		}
		if !obj.LastModified.IsZero() {
			at := obj.LastModified
			a.UploadedAt = &at
		}
		out = append(out, a)
	}
	return out, nil
}

func originalFilename(key string) string {
	name := path.Base(key)
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func attachmentPrefix(inspectionID string) string {
	return keyPrefix + inspectionID + "/"
}

func buildStorageKey(inspectionID string, id uuid.UUID, filename string) string {
	return fmt.Sprintf("%s%s/%s", attachmentPrefix(inspectionID), id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	return url.PathEscape(name)
}
