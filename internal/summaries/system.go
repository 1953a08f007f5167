package summaries

import (
	"context"

	"github.com/JaimeStill/inspector/pkg/pagination"
)

// System defines the public contract for aggregation, completion, and notification.
type System interface {
	Handler() *Handler

	// Metrics reads all four result stores and tallies rejects. Bounded by
	// the operation timeout; exceeding it returns ErrTimeout.
	Metrics(ctx context.Context, inspectionID string) (*Metrics, error)

	// Readiness reports the check sections that have no stored results.
	Readiness(ctx context.Context, inspectionID string) (*Readiness, error)

	// Complete records the summary, marks every result complete, and flips
	// the header status in one transaction. A second call for the same
	// inspection returns ErrAlreadyCompleted.
	Complete(ctx context.Context, inspectionID string) (*Summary, error)

	Find(ctx context.Context, inspectionID string) (*Summary, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	// Export renders matching summaries as an XLSX workbook.
	Export(ctx context.Context, filters Filters) ([]byte, error)

	// Email sends the stored figures for a completed inspection. No
	// aggregation is performed and delivery is not retried.
	Email(ctx context.Context, inspectionID string, cmd EmailCommand) (*EmailResult, error)
}
