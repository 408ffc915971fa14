package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Stats counts the statements a Backend sent to the database. Reads are
// SELECT statements, writes are everything else.
type Stats struct {
	reads    atomic.Int64
	writes   atomic.Int64
	failures atomic.Int64
	slow     atomic.Int64
	elapsed  atomic.Int64
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Reads:    s.reads.Load(),
		Writes:   s.writes.Load(),
		Failures: s.failures.Load(),
		Slow:     s.slow.Load(),
		Elapsed:  time.Duration(s.elapsed.Load()),
	}
}

// Reset zeroes the counters.
func (s *Stats) Reset() {
	for _, c := range []*atomic.Int64{&s.reads, &s.writes, &s.failures, &s.slow, &s.elapsed} {
		c.Store(0)
	}
}

// Snapshot is a copy of Stats taken at one instant.
type Snapshot struct {
	Reads    int64
	Writes   int64
	Failures int64
	Slow     int64
	Elapsed  time.Duration
}

// Mean is the average time spent per statement.
func (s Snapshot) Mean() time.Duration {
	if n := s.Reads + s.Writes; n > 0 {
		return s.Elapsed / time.Duration(n)
	}
	return 0
}

func (s Snapshot) String() string {
	return fmt.Sprintf("reads=%d writes=%d failures=%d slow=%d elapsed=%s mean=%s",
		s.Reads, s.Writes, s.Failures, s.Slow, s.Elapsed, s.Mean())
}

// SlowFunc is called for every statement that ran longer than the slow
// threshold.
type SlowFunc func(ctx context.Context, stmt string, args []any, took time.Duration)

// DebugFunc receives every statement before it runs.
type DebugFunc func(ctx context.Context, v ...any)

// WithSlowThreshold sets the duration after which a statement counts as
// slow. It defaults to 100ms.
func WithSlowThreshold(d time.Duration) Option {
	return func(b *Backend) { b.slowAfter = d }
}

// WithSlowFunc registers fn for slow statements.
func WithSlowFunc(fn SlowFunc) Option {
	return func(b *Backend) { b.onSlow = fn }
}

// WithSlowLog reports slow statements as warnings on logger, or on the
// default logger when nil.
func WithSlowLog(logger *slog.Logger) Option {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowFunc(func(ctx context.Context, stmt string, args []any, took time.Duration) {
		logger.WarnContext(ctx, "slow storage statement", "took", took, "stmt", stmt, "args", args)
	})
}

// WithDebug logs every statement through fn. A nil fn logs at debug level
// to the default logger.
func WithDebug(fn DebugFunc) Option {
	if fn == nil {
		fn = func(ctx context.Context, v ...any) {
			slog.DebugContext(ctx, fmt.Sprint(v...))
		}
	}
	return func(b *Backend) { b.debug = fn }
}

// Stats returns the live counters of the backend.
func (b *Backend) Stats() *Stats {
	return b.stats
}

func (b *Backend) log(ctx context.Context, v ...any) {
	if b.debug != nil {
		b.debug(ctx, v...)
	}
}

func (b *Backend) record(ctx context.Context, stmt string, args []any, start time.Time, err error, read bool) {
	took := time.Since(start)
	s := b.stats
	if read {
		s.reads.Add(1)
	} else {
		s.writes.Add(1)
	}
	s.elapsed.Add(int64(took))
	if err != nil {
		s.failures.Add(1)
	}
	if took <= b.slowAfter {
		return
	}
	s.slow.Add(1)
	if b.onSlow != nil {
		b.onSlow(ctx, stmt, args, took)
	}
}
