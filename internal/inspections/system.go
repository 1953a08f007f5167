package inspections

import (
	"context"
	"database/sql"

	"github.com/JaimeStill/inspector/pkg/pagination"
)

// System defines the public contract for inspection header operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Inspection], error)

	Find(ctx context.Context, id string) (*Inspection, error)
	Create(ctx context.Context, cmd HeaderCommand) (*Inspection, error)

	// Update overwrites the header fields. Returns ErrCompleted once the
	// inspection has been finalized.
	Update(ctx context.Context, id string, cmd HeaderCommand) (*Inspection, error)

	// MarkCompleted flips the header status inside the caller's transaction.
	MarkCompleted(ctx context.Context, tx *sql.Tx, id string) error
}
