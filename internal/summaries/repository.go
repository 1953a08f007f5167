package summaries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/internal/results"
	"github.com/JaimeStill/inspector/pkg/database"
	"github.com/JaimeStill/inspector/pkg/mail"
	"github.com/JaimeStill/inspector/pkg/metrics"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

type repo struct {
	db          *sql.DB
	timeout     time.Duration
	inspections inspections.System
	results     results.System
	mail        mail.System
	metrics     *metrics.Metrics
	logger      *slog.Logger
	pagination  pagination.Config
}

// Deps holds the collaborators of the summary system.
type Deps struct {
	DB          *sql.DB
	Timeout     time.Duration
	Inspections inspections.System
	Results     results.System
	Mail        mail.System
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	Pagination  pagination.Config
}

// New creates a summary repository implementing the System interface.
func New(deps Deps) System {
	return &repo{
		db:          deps.DB,
		timeout:     deps.Timeout,
		inspections: deps.Inspections,
		results:     deps.Results,
		mail:        deps.Mail,
		metrics:     deps.Metrics,
		logger:      deps.Logger.With("system", "summaries"),
		pagination:  deps.Pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Metrics(ctx context.Context, inspectionID string) (*Metrics, error) {
	if _, err := r.inspections.Find(ctx, inspectionID); err != nil {
		return nil, err
	}

	records, err := r.collect(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	m := Tally(records)
	m.InspectionID = inspectionID
	return &m, nil
}

func (r *repo) Readiness(ctx context.Context, inspectionID string) (*Readiness, error) {
	if _, err := r.inspections.Find(ctx, inspectionID); err != nil {
		return nil, err
	}

	records, err := r.collect(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	counts := make(map[checks.Type]int, len(records))
	for check, recs := range records {
		counts[check] = len(recs)
	}

	rd := readiness(inspectionID, counts)
	return &rd, nil
}

func (r *repo) Complete(ctx context.Context, inspectionID string) (*Summary, error) {
	if err := r.guard(ctx, inspectionID); err != nil {
		return nil, err
	}

	insp, err := r.inspections.Find(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp.Completed() {
		return nil, ErrAlreadyCompleted
	}

	records, err := r.collect(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	s := newSummary(insp, Tally(records))

	q := `
		INSERT INTO inspection_summaries(inspection_id, inspection_date, po_number, release_number, series,
			product_code, order_qty, lot_qty, sample_qty, inspector, unit_rejects, all_rejects, disposition)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + returning

	args := []any{
		s.InspectionID,
		s.InspectionDate,
		s.PONumber,
		s.ReleaseNumber,
		s.Series,
		s.ProductCode,
		s.OrderQty,
		s.LotQty,
		s.SampleQty,
		s.Inspector,
		s.UnitRejects,
		s.AllRejects,
		s.Disposition,
	}

	var marked int64
	saved, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Summary, error) {
		sm, err := repository.QueryOne(ctx, tx, q, args, scanSummary)
		if err != nil {
			if repository.IsForeignKey(err) {
				return Summary{}, inspections.ErrNotFound
			}
			return Summary{}, repository.MapError(err, ErrNotFound, ErrAlreadyCompleted)
		}

		marked, err = r.results.MarkComplete(ctx, tx, inspectionID)
		if err != nil {
			return Summary{}, err
		}

		if err := r.inspections.MarkCompleted(ctx, tx, inspectionID); err != nil {
			return Summary{}, fmt.Errorf("mark inspection completed: %w", err)
		}

		return sm, nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.Completed(saved.Disposition)

	r.logger.Info(
		"inspection completed",
		"inspection_id", inspectionID,
		"unit_rejects", saved.UnitRejects,
		"all_rejects", saved.AllRejects,
		"disposition", saved.Disposition,
		"results_marked", marked,
	)
	return &saved, nil
}

func (r *repo) Find(ctx context.Context, inspectionID string) (*Summary, error) {
	q, args := query.NewBuilder(projection).BuildSingle("InspectionID", inspectionID)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSummary)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrAlreadyCompleted)
	}
	return &s, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "InspectionID", "PONumber", "ProductCode")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count summaries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.PageSize, page.Offset())
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Export(ctx context.Context, filters Filters) ([]byte, error) {
	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	q, args := qb.Build()
	if limit := r.pagination.MaxExportRows; limit > 0 {
		q, args = qb.BuildPage(limit, 0)
	}

	items, err := database.Bound(ctx, r.timeout, func(ctx context.Context) ([]Summary, error) {
		return repository.QueryMany(ctx, r.db, q, args, scanSummary)
	})
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}

	data, err := workbook(items)
	if err != nil {
		return nil, err
	}

	r.logger.Info("summaries exported", "rows", len(items), "bytes", len(data))
	return data, nil
}

func (r *repo) Email(ctx context.Context, inspectionID string, cmd EmailCommand) (*EmailResult, error) {
	s, err := r.Find(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	recipients, err := parseRecipients(cmd.Recipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		recipients = r.mail.Recipients()
	}

	err = r.mail.Send(ctx, mail.Message{
		Subject:    fmt.Sprintf("Hub Inspection %s: %s", s.InspectionID, s.Disposition),
		Body:       EmailBody(*s, cmd.Message),
		Recipients: recipients,
	})
	switch {
	case errors.Is(err, mail.ErrDisabled):
		r.metrics.Emailed(metrics.StatusDisabled)
		return nil, err
	case err != nil:
		r.metrics.Emailed(metrics.StatusFailed)
		return nil, fmt.Errorf("email summary %s: %w", inspectionID, err)
	}

	r.metrics.Emailed(metrics.StatusSent)
	r.logger.Info("summary emailed", "inspection_id", inspectionID, "recipients", len(recipients))
	return &EmailResult{InspectionID: inspectionID, Recipients: recipients}, nil
}

// guard refuses completion when a summary already exists.
func (r *repo) guard(ctx context.Context, inspectionID string) error {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM inspection_summaries WHERE inspection_id = $1)",
		inspectionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing summary: %w", err)
	}
	if exists {
		return ErrAlreadyCompleted
	}
	return nil
}

// collect reads the four result stores concurrently under the operation timeout.
func (r *repo) collect(ctx context.Context, inspectionID string) (map[checks.Type][]results.Record, error) {
	return database.Bound(ctx, r.timeout, func(ctx context.Context) (map[checks.Type][]results.Record, error) {
		var mu sync.Mutex
		out := make(map[checks.Type][]results.Record, len(checks.Types()))

		g, gctx := errgroup.WithContext(ctx)
		for _, check := range checks.Types() {
			g.Go(func() error {
				recs, err := r.results.List(gctx, check, inspectionID)
				if err != nil {
					return err
				}
				mu.Lock()
				out[check] = recs
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func parseRecipients(in []string) ([]string, error) {
	var out []string
	for _, raw := range in {
		for _, addr := range mail.SplitAddresses(raw) {
			parsed, err := netmail.ParseAddress(addr)
			if err != nil {
				return nil, fmt.Errorf("%w: recipient %q", ErrInvalidEmail, addr)
			}
			out = append(out, parsed.Address)
		}
	}
	return out, nil
}
