package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pixelready/express-jobly/db"
)

// scanAll maps every row onto T by its db tags and closes rows. Statements
// alias columns to logical names, so the tags name logical fields.
// The result is never nil.
//
// Drivers may report constraint failures while stepping rows; CloseWith
// returns them mapped and hands them to the hooks.
func scanAll[T any](rows *db.Rows) ([]*T, error) {
	out := []*T{}
	if err := rows.CloseWith(sqlx.StructScan(rows, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

// scanOne is scanAll for statements that affect at most one row; notFound is
// returned when there was none.
func scanOne[T any](rows *db.Rows, notFound error) (*T, error) {
	all, err := scanAll[T](rows)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, notFound
	}
	return all[0], nil
}

// txStarter is implemented by *db.DB; a *db.Tx is already a transaction.
type txStarter interface {
	ExecTx(ctx context.Context, fn func(*db.Tx) error, opts ...db.TxOptions) error
}

// inTx runs fn in a new transaction when q can start one, and on q otherwise.
func inTx(ctx context.Context, q db.Querier, fn func(db.Querier) error) error {
	if starter, ok := q.(txStarter); ok {
		return starter.ExecTx(ctx, func(tx *db.Tx) error { return fn(tx) })
	}
	return fn(q)
}
