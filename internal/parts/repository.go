package parts

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/inspector/pkg/database"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

type repo struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a part master repository implementing the System interface.
// timeout bounds Import.
func New(db *sql.DB, timeout time.Duration, logger *slog.Logger) System {
	return &repo{
		db:      db,
		timeout: timeout,
		logger:  logger.With("system", "parts"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) Lines(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "line", nil)
}

func (r *repo) Series(ctx context.Context, line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return []string{}, nil
	}
	return r.distinct(ctx, "series", map[string]string{"line": line})
}

func (r *repo) Codes(ctx context.Context, line, series string) ([]string, error) {
	line, series = strings.TrimSpace(line), strings.TrimSpace(series)
	if line == "" || series == "" {
		return []string{}, nil
	}
	return r.distinct(ctx, "part_code", map[string]string{"line": line, "series": series})
}

func (r *repo) Details(ctx context.Context, line, series, code string) (*Part, error) {
	line, series, code = strings.TrimSpace(line), strings.TrimSpace(series), strings.TrimSpace(code)
	if line == "" || series == "" || code == "" {
		return nil, ErrNotFound
	}

	q, args := query.
		NewBuilder(projection).
		WhereEquals("Line", &line).
		WhereEquals("Series", &series).
		WhereEquals("PartCode", &code).
		Build()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPart)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &p, nil
}

func (r *repo) Tiers(ctx context.Context) ([]Tier, error) {
	tiers, err := repository.QueryMany(ctx, r.db, tiersSQL, nil, scanTier)
	if err != nil {
		return nil, fmt.Errorf("query vendor tiers: %w", err)
	}
	return tiers, nil
}

func (r *repo) Import(ctx context.Context, filename string, reader io.Reader) (*ImportResult, error) {
	rows, err := ReadRows(filename, reader)
	if err != nil {
		return nil, err
	}

	items, skipped, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}

	result, err := database.Bound(ctx, r.timeout, func(ctx context.Context) (*ImportResult, error) {
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*ImportResult, error) {
			for _, p := range items {
				_, err := tx.ExecContext(
					ctx, upsertSQL,
					p.Line, p.Series, p.Model, p.PartCode, p.BodyMat, p.ASMEClass, p.EndConnect, p.Size,
				)
				if err != nil {
					return nil, fmt.Errorf("upsert part %s/%s/%s: %w", p.Line, p.Series, p.PartCode, err)
				}
			}
			return &ImportResult{Imported: len(items), Skipped: skipped}, nil
		})
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("part master imported", "file", filename, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// distinct returns the sorted non-empty values of column filtered by equality on where.
func (r *repo) distinct(ctx context.Context, column string, where map[string]string) ([]string, error) {
	var (
		clauses []string
		args    []any
	)
	for _, col := range []string{"line", "series"} {
		if v, ok := where[col]; ok {
			args = append(args, v)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	clauses = append(clauses, column+" <> ''")

	q := fmt.Sprintf(
		"SELECT DISTINCT %s FROM part_master WHERE %s ORDER BY %s",
		column, strings.Join(clauses, " AND "), column,
	)

	values, err := repository.QueryMany(ctx, r.db, q, args, scanString)
	if err != nil {
		return nil, fmt.Errorf("query %s values: %w", column, err)
	}
	return values, nil
}
