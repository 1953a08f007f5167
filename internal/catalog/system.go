package catalog

import (
	"context"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

// System defines the public contract for question catalog operations.
type System interface {
	Handler() *Handler

	// Questions returns the active questions for a check, ordered by Sort.
	// Series scopes every check except document. An empty result is not an error.
	Questions(ctx context.Context, check checks.Type, series string) ([]Question, error)

	List(
		ctx context.Context,
		check checks.Type,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Question], error)

	Find(ctx context.Context, check checks.Type, id string) (*Question, error)
	Create(ctx context.Context, check checks.Type, cmd CreateCommand) (*Question, error)
	SetActive(ctx context.Context, check checks.Type, id string, active bool) (*Question, error)
}
