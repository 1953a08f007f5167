package sessions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

// System defines the public contract for checklist sessions.
type System interface {
	Handler() *Handler

	// Start registers a shutdown hook that drops all open sessions.
	Start(lc *lifecycle.Coordinator) error

	// Open loads the header and catalog and positions the session on sample 1,
	// pre-filled from stored results. An empty catalog sets Notice.
	Open(ctx context.Context, cmd StartCommand) (*Session, error)

	Get(id uuid.UUID) (*Session, error)
	Answer(id uuid.UUID, cmd AnswerCommand) (*Session, error)

	// Next validates and snapshots the current sample, then advances.
	// From the last sample it enters the Done state.
	Next(ctx context.Context, id uuid.UUID) (*Session, error)

	// Previous validates and snapshots the current sample, then steps back.
	// It does not move from sample 1.
	Previous(ctx context.Context, id uuid.UUID) (*Session, error)

	// Complete requires every sample to be answered, writes the whole cache
	// to the result store in one call, and discards the session.
	Complete(ctx context.Context, id uuid.UUID) (*CompleteResult, error)

	Discard(id uuid.UUID) error
}
