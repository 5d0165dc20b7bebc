package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hook interface
// ─────────────────────────────────────────────────────────────────────────────

// Hook is called before and after every statement.
//
// Implementations MUST be goroutine-safe and SHOULD be non-blocking.
// Panics inside a hook are recovered by the hook chain and logged.
type Hook interface {
	// BeforeQuery is invoked immediately before the statement is sent to the driver.
	BeforeQuery(ctx context.Context, query string, args []any)

	// AfterQuery is invoked after the driver returns. err is the already
	// mapped error handed to the caller, nil on success.
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

// ─────────────────────────────────────────────────────────────────────────────
// hookChain — internal dispatcher
// ─────────────────────────────────────────────────────────────────────────────

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		safeBeforeQuery(h, ctx, query, args)
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		safeAfterQuery(h, ctx, query, args, d, err)
	}
}

func safeBeforeQuery(h Hook, ctx context.Context, query string, args []any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("jobly/db: hook panic in BeforeQuery", "panic", r)
		}
	}()
	h.BeforeQuery(ctx, query, args)
}

func safeAfterQuery(h Hook, ctx context.Context, query string, args []any, d time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("jobly/db: hook panic in AfterQuery", "panic", r)
		}
	}()
	h.AfterQuery(ctx, query, args, d, err)
}

// ── Logging hook ─────────────────────────────────────────────────────────────

// LogHookConfig configures the structured logging hook.
type LogHookConfig struct {
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
	// SlowQueryThreshold logs a warning when duration exceeds this value.
	// Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound parameters in log entries.
	LogArgs bool
}

// NewLogHook returns a Hook that emits structured log entries via slog.
func NewLogHook(cfg LogHookConfig) Hook {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &logHook{cfg: cfg, logger: logger}
}

type logHook struct {
	cfg    LogHookConfig
	logger *slog.Logger
}

func (h *logHook) BeforeQuery(_ context.Context, _ string, _ []any) {}

func (h *logHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	attrs := []any{
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}
	if h.cfg.LogArgs && len(args) > 0 {
		attrs = append(attrs, slog.Any("args", args))
	}

	// Expected outcomes of the record operations are not failures.
	if err != nil && !IsNotFound(err) && !IsDuplicateKey(err) {
		h.logger.ErrorContext(ctx, "jobly/db: query error", append(attrs, slog.Any("error", err))...)
		return
	}

	if h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold {
		h.logger.WarnContext(ctx, "jobly/db: slow query", attrs...)
		return
	}

	h.logger.DebugContext(ctx, "jobly/db: query", attrs...)
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// ── Statistics hook ──────────────────────────────────────────────────────────

// QueryStats accumulates statement counters. The zero value is ready to use
// and safe for concurrent use; register it with NewStatsHook.
type QueryStats struct {
	total    atomic.Int64
	failed   atomic.Int64
	slow     atomic.Int64
	totalDur atomic.Int64 // nanoseconds

	// SlowThreshold marks statements slower than this as slow. Zero disables it.
	SlowThreshold time.Duration
}

// QueryStatsSnapshot is a point-in-time copy of QueryStats.
type QueryStatsSnapshot struct {
	Total       int64         `json:"total"`
	Failed      int64         `json:"failed"`
	Slow        int64         `json:"slow"`
	AvgDuration time.Duration `json:"avgDurationNs"`
}

func (s *QueryStats) record(d time.Duration, err error) {
	s.total.Add(1)
	s.totalDur.Add(int64(d))
	if err != nil && !IsNotFound(err) && !IsDuplicateKey(err) {
		s.failed.Add(1)
	}
	if s.SlowThreshold > 0 && d > s.SlowThreshold {
		s.slow.Add(1)
	}
}

// Snapshot returns the current counters.
func (s *QueryStats) Snapshot() QueryStatsSnapshot {
	snap := QueryStatsSnapshot{
		Total:  s.total.Load(),
		Failed: s.failed.Load(),
		Slow:   s.slow.Load(),
	}
	if snap.Total > 0 {
		snap.AvgDuration = time.Duration(s.totalDur.Load() / snap.Total)
	}
	return snap
}

// NewStatsHook returns a Hook that feeds every statement into stats.
func NewStatsHook(stats *QueryStats) Hook {
	return &statsHook{s: stats}
}

type statsHook struct{ s *QueryStats }

func (h *statsHook) BeforeQuery(_ context.Context, _ string, _ []any) {}
func (h *statsHook) AfterQuery(_ context.Context, _ string, _ []any, d time.Duration, err error) {
	h.s.record(d, err)
}
