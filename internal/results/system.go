package results

import (
	"context"
	"database/sql"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/pkg/storage"
)

// System defines the public contract for the per-check result store.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Upsert writes every leaf of cmd as its own keyed statement. A failure
	// part way leaves earlier leaves applied; resubmitting the batch is safe.
	Upsert(ctx context.Context, check checks.Type, inspectionID string, cmd UpsertCommand) (*UpsertResult, error)

	// Read returns stored answers shaped for pre-filling a revisited checklist.
	Read(ctx context.Context, check checks.Type, inspectionID string) (*ReadResult, error)

	// List returns flat records for a check ordered by sample and question.
	List(ctx context.Context, check checks.Type, inspectionID string) ([]Record, error)

	Counts(ctx context.Context, check checks.Type, inspectionID string) (*Counts, error)

	// MarkComplete flags every result of the inspection complete inside tx.
	MarkComplete(ctx context.Context, tx *sql.Tx, inspectionID string) (int64, error)

	Attach(ctx context.Context, inspectionID string, cmd AttachCommand) (*Attachment, error)

	// Attachments lists the files uploaded for an inspection ordered by key.
	Attachments(ctx context.Context, inspectionID string) ([]Attachment, error)

	// Attachment opens a stored attachment. The caller must close Body.
	Attachment(ctx context.Context, key string) (*storage.Blob, error)
}
