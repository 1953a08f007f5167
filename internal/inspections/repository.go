package inspections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an inspection repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "inspections"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Inspection], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ID", "PONumber", "ProductCode")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count inspections: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.PageSize, page.Offset())
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanInspection)
	if err != nil {
		return nil, fmt.Errorf("query inspections: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Inspection, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	i, err := repository.QueryOne(ctx, r.db, q, args, scanInspection)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

func (r *repo) Create(ctx context.Context, cmd HeaderCommand) (*Inspection, error) {
	cmd.Normalize()
	date, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO inspections(inspection_date, po_number, release_number, series, product_code, order_qty, lot_qty, sample_qty, inspector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + returning

	args := []any{
		date,
		cmd.PONumber,
		cmd.ReleaseNumber,
		cmd.Series,
		cmd.ProductCode,
		cmd.OrderQty,
		cmd.LotQty,
		cmd.SampleQty,
		cmd.Inspector,
	}

	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Inspection, error) {
		return repository.QueryOne(ctx, tx, q, args, scanInspection)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("inspection created", "id", i.ID, "po_number", i.PONumber, "series", i.Series)
	return &i, nil
}

func (r *repo) Update(ctx context.Context, id string, cmd HeaderCommand) (*Inspection, error) {
	cmd.Normalize()
	date, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	q := `
		UPDATE inspections
		SET inspection_date = $2, po_number = $3, release_number = $4, series = $5,
			product_code = $6, order_qty = $7, lot_qty = $8, sample_qty = $9,
			inspector = $10, updated_at = NOW()
		WHERE id = $1 AND status <> $11
		RETURNING ` + returning

	args := []any{
		id,
		date,
		cmd.PONumber,
		cmd.ReleaseNumber,
		cmd.Series,
		cmd.ProductCode,
		cmd.OrderQty,
		cmd.LotQty,
		cmd.SampleQty,
		cmd.Inspector,
		StatusCompleted,
	}

	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Inspection, error) {
		if err := guardRecorded(ctx, tx, id, cmd); err != nil {
			return Inspection{}, err
		}
		return repository.QueryOne(ctx, tx, q, args, scanInspection)
	})
	if err != nil {
		err = repository.MapError(err, ErrNotFound, ErrDuplicate)
		if err == ErrNotFound {
			return nil, r.notUpdatable(ctx, id)
		}
		return nil, err
	}

	r.logger.Info("inspection updated", "id", i.ID)
	return &i, nil
}

func (r *repo) MarkCompleted(ctx context.Context, tx *sql.Tx, id string) error {
	err := repository.ExecExpectOne(
		ctx, tx,
		"UPDATE inspections SET status = $2, updated_at = NOW() WHERE id = $1",
		id, StatusCompleted,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

const recordedSamples = `
	SELECT i.series, COALESCE(MAX(r.sample_no), 0)
	FROM inspections i
	LEFT JOIN (
		SELECT inspection_id, sample_no FROM visual_results
		UNION ALL SELECT inspection_id, sample_no FROM functional_results
		UNION ALL SELECT inspection_id, sample_no FROM dimension_results
	) r ON r.inspection_id = i.id
	WHERE i.id = $1
	GROUP BY i.series`

// guardRecorded refuses header edits that would orphan sampled results:
// a sample_qty below the highest recorded sample, or a series change once
// any sampled answer exists. A missing inspection passes through so the
// update itself reports it.
func guardRecorded(ctx context.Context, tx *sql.Tx, id string, cmd HeaderCommand) error {
	var (
		series    string
		maxSample int
	)
	err := tx.QueryRowContext(ctx, recordedSamples, id).Scan(&series, &maxSample)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check recorded samples: %w", err)
	}

	if maxSample == 0 {
		return nil
	}
	if cmd.SampleQty < maxSample {
		return fmt.Errorf("%w: sample_qty %d is below recorded sample %d", ErrResultsRecorded, cmd.SampleQty, maxSample)
	}
	if cmd.Series != series {
		return fmt.Errorf("%w: series cannot change from %s once samples are recorded", ErrResultsRecorded, series)
	}
	return nil
}

// notUpdatable resolves why a guarded update matched no rows.
func (r *repo) notUpdatable(ctx context.Context, id string) error {
	existing, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if existing.Completed() {
		return ErrCompleted
	}
	return ErrNotFound
}
