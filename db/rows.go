package db

import (
	"context"
	"database/sql"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// statement — one hooked execution, finished exactly once
// ─────────────────────────────────────────────────────────────────────────────

type statement struct {
	ctx    context.Context
	query  string
	args   []any
	start  time.Time
	hooks  hookChain
	cancel context.CancelFunc
}

func begin(ctx context.Context, cancel context.CancelFunc, hooks hookChain, query string, args []any) *statement {
	s := &statement{ctx: ctx, query: query, args: args, start: time.Now(), hooks: hooks, cancel: cancel}
	hooks.Before(ctx, query, args)
	return s
}

// finish reports err to the hooks and releases the statement's context.
func (s *statement) finish(err error) {
	s.hooks.After(s.ctx, s.query, s.args, time.Since(s.start), err)
	s.cancel()
}

// ─────────────────────────────────────────────────────────────────────────────
// Rows — wraps *sql.Rows so failures during iteration reach the hooks
// ─────────────────────────────────────────────────────────────────────────────

// Rows wraps *sql.Rows. Err reports mapped errors, and Close reports the
// statement's final outcome to the hooks, including failures the driver only
// surfaced while rows were being read (e.g. a constraint checked by an
// INSERT ... RETURNING).
//
// Rows owns the statement's default timeout; it is released by Close.
type Rows struct {
	*sql.Rows
	stmt   *statement
	errMap ErrorMapper

	closed bool
	final  error
}

func newRows(raw *sql.Rows, stmt *statement, errMap ErrorMapper) *Rows {
	return &Rows{Rows: raw, stmt: stmt, errMap: errMap}
}

// Err returns the mapped error encountered during iteration, if any.
func (r *Rows) Err() error {
	return mapWith(r.errMap, r.Rows.Err())
}

// Close closes the rows and reports the statement to the hooks. It returns
// the mapped error of closing, like (*sql.Rows).Close.
func (r *Rows) Close() error {
	closeErr, _ := r.finish(nil)
	return closeErr
}

// CloseWith closes the rows after a consumer failed with consumeErr and
// returns the statement's overall error: the iteration error, the close
// error or consumeErr, in that order of precedence.
func (r *Rows) CloseWith(consumeErr error) error {
	_, final := r.finish(consumeErr)
	return final
}

func (r *Rows) finish(consumeErr error) (closeErr, final error) {
	if r.closed {
		return nil, r.final
	}
	r.closed = true

	iterErr := r.Rows.Err()
	closeErr = mapWith(r.errMap, r.Rows.Close())

	switch {
	case iterErr != nil:
		final = mapWith(r.errMap, iterErr)
	case closeErr != nil:
		final = closeErr
	default:
		final = mapWith(r.errMap, consumeErr)
	}
	r.final = final
	r.stmt.finish(final)
	return closeErr, final
}

// ─────────────────────────────────────────────────────────────────────────────
// Row — wraps *sql.Row to translate errors uniformly
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the error mapper. The statement
// is reported to the hooks, and its default timeout released, by Scan; callers
// must always call it.
type Row struct {
	raw    *sql.Row
	stmt   *statement
	errMap ErrorMapper
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	err := mapWith(r.errMap, r.raw.Scan(dest...))
	if r.stmt != nil {
		r.stmt.finish(err)
		r.stmt = nil
	}
	return err
}

func mapWith(m ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	return m.Map(err)
}

func noCancel() {}
