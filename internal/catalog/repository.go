package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a catalog repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "catalog"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Questions(ctx context.Context, check checks.Type, series string) ([]Question, error) {
	if !check.Valid() {
		return nil, checks.ErrInvalidType
	}

	series = strings.TrimSpace(series)
	if check.Sampled() && series == "" {
		return []Question{}, nil
	}

	active := true
	qb := query.
		NewBuilder(projections[check]).
		WhereEquals("Active", &active)

	if check.Sampled() {
		qb.WhereEquals("Series", &series)
	}

	q, args := qb.Build()
	qs, err := repository.QueryMany(ctx, r.db, q, args, scanner(check))
	if err != nil {
		return nil, fmt.Errorf("query %s questions: %w", check, err)
	}

	Sort(qs)
	return qs, nil
}

func (r *repo) List(
	ctx context.Context,
	check checks.Type,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Question], error) {
	if !check.Valid() {
		return nil, checks.ErrInvalidType
	}
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projections[check], defaultSort...).
		WhereSearch(page.Search, "ID", "Prompt")

	filters.Apply(check, qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s questions: %w", check, err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.PageSize, page.Offset())
	qs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanner(check))
	if err != nil {
		return nil, fmt.Errorf("query %s questions: %w", check, err)
	}

	result := pagination.NewPageResult(qs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, check checks.Type, id string) (*Question, error) {
	if !check.Valid() {
		return nil, checks.ErrInvalidType
	}

	q, args := query.NewBuilder(projections[check]).BuildSingle("ID", id)

	question, err := repository.QueryOne(ctx, r.db, q, args, scanner(check))
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &question, nil
}

func (r *repo) Create(ctx context.Context, check checks.Type, cmd CreateCommand) (*Question, error) {
	if !check.Valid() {
		return nil, checks.ErrInvalidType
	}
	if err := cmd.validate(check); err != nil {
		return nil, err
	}

	required := true
	if cmd.Required != nil {
		required = *cmd.Required
	}

	cols := []string{"question_id", "prompt", "sort_order", "required", "photo_required_on_fail"}
	args := []any{cmd.ID, cmd.Prompt, cmd.SortOrder, required, cmd.PhotoRequiredOnFail}
	if check.Sampled() {
		cols = append(cols, "series")
		args = append(args, cmd.Series)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s(%s) VALUES (%s) RETURNING %s",
		table(check),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		returning(check),
	)

	question, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Question, error) {
		return repository.QueryOne(ctx, tx, q, args, scanner(check))
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("question created", "check", check, "question_id", question.ID, "series", question.Series)
	return &question, nil
}

func (r *repo) SetActive(ctx context.Context, check checks.Type, id string, active bool) (*Question, error) {
	if !check.Valid() {
		return nil, checks.ErrInvalidType
	}

	q := fmt.Sprintf(
		"UPDATE %s SET active = $2, updated_at = NOW() WHERE question_id = $1 RETURNING %s",
		table(check),
		returning(check),
	)

	question, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Question, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, active}, scanner(check))
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("question active changed", "check", check, "question_id", id, "active", active)
	return &question, nil
}

// returning lists the unqualified projection columns in scan order.
func returning(check checks.Type) string {
	cols := projections[check].ColumnList()
	out := make([]string, len(cols))
	for i, c := range cols {
		_, out[i], _ = strings.Cut(c, ".")
	}
	return strings.Join(out, ", ")
}
