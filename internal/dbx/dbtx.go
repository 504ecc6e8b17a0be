// Package dbx holds the small database plumbing shared by repositories:
// the DBTX interface that lets a repository run against either a plain
// connection or an open transaction, and a transaction wrapper.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql that repositories actually call.
// Both *sql.DB and *sql.Tx satisfy it, so the same repository code works
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit if fn returns nil, roll back
// if it returns an error or panics. A panic is rethrown after rollback.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
