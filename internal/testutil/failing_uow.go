package testutil

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/dealnotes/internal/db"
)

// FailingUoW wraps a real unit of work and makes the FailOn-th write inside
// each transaction return Err, counting from 1. Reads are never counted.
type FailingUoW struct {
	Inner  db.UnitOfWork
	FailOn int
	Err    error
}

// FailExecAt returns a unit of work over database whose nth write fails.
func FailExecAt(database *sql.DB, n int, err error) *FailingUoW {
	return &FailingUoW{Inner: db.NewSQLiteUnitOfWork(database), FailOn: n, Err: err}
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.Inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingTx{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

type failingTx struct {
	db.DBTX
	writes int
	failOn int
	err    error
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
