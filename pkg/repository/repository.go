// Package repository holds the generic query, exec, and transaction helpers
// shared by the inspection domain stores.
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DB is the query surface common to *sql.DB, *sql.Tx, and *sql.Conn.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one entity from the current row.
type ScanFunc[T any] func(Scanner) (T, error)

// WithTx runs fn inside a transaction that commits when fn succeeds and rolls
// back otherwise. Errors returned by fn pass through unwrapped.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (result T, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if result, err = fn(tx); err != nil {
		var zero T
		return zero, err
	}
	if err = tx.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}

// QueryOne scans the first row of query. A missing row surfaces as sql.ErrNoRows.
func QueryOne[T any](ctx context.Context, db DB, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(db.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row of query. No rows yields an empty, non-nil slice
// so JSON responses carry [] rather than null.
func QueryMany[T any](ctx context.Context, db DB, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ExecCount runs a statement and returns the number of affected rows.
func ExecCount(ctx context.Context, db DB, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecExpectOne runs a statement that must touch a row; touching none is
// reported as sql.ErrNoRows so MapError turns it into the caller's not-found.
func ExecExpectOne(ctx context.Context, db DB, query string, args ...any) error {
	n, err := ExecCount(ctx, db, query, args...)
	switch {
	case err != nil:
		return err
	case n == 0:
		return sql.ErrNoRows
	}
	return nil
}
