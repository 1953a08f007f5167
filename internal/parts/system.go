package parts

import (
	"context"
	"io"
)

// System defines the public contract for part master lookups and import.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Lines returns distinct product lines in ascending order.
	Lines(ctx context.Context) ([]string, error)

	// Series returns distinct series for a line. An empty line returns none.
	Series(ctx context.Context, line string) ([]string, error)

	// Codes returns distinct part codes for a line and series.
	Codes(ctx context.Context, line, series string) ([]string, error)

	Details(ctx context.Context, line, series, code string) (*Part, error)

	// Tiers returns the vendor tier sampling reference in display order.
	Tiers(ctx context.Context) ([]Tier, error)

	// Import upserts every row of a CSV or XLSX file by (line, series, part_code)
	// in one transaction bounded by the operation timeout.
	Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error)
}
