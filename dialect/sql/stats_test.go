package sql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/accessgen/dialect"
)

func TestStats(t *testing.T) {
	t.Run("counts statements and errors", func(t *testing.T) {
		b := openSQLite(t)
		ctx := context.Background()
		b.Stats().Reset()

		require.NoError(t, b.Write(ctx, "A", "1"))
		_, _, err := b.Read(ctx, "A")
		require.NoError(t, err)
		_, _, err = b.Read(ctx, "missing")
		require.NoError(t, err)

		s := b.Stats().Snapshot()
		assert.Equal(t, int64(1), s.Writes)
		assert.Equal(t, int64(2), s.Reads)
		assert.Equal(t, int64(0), s.Failures)
		assert.Contains(t, s.String(), "reads=2 writes=1 failures=0")
	})

	t.Run("reports slow queries", func(t *testing.T) {
		var slow []string
		b := openSQLite(t,
			WithSlowThreshold(-1),
			WithSlowFunc(func(_ context.Context, query string, _ []any, _ time.Duration) {
				slow = append(slow, query)
			}),
		)
		slow = nil
		require.NoError(t, b.Clear(context.Background()))
		assert.Equal(t, []string{"DELETE FROM accessgen_storage"}, slow)
		assert.Positive(t, b.Stats().Snapshot().Slow)
	})

	t.Run("debug logs every statement", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		var logged []string
		b, err := OpenDB(dialect.SQLite, db, WithDebug(func(_ context.Context, v ...any) {
			logged = append(logged, v[0].(string))
		}))
		require.NoError(t, err)
		mock.ExpectExec("DELETE FROM accessgen_storage").WillReturnError(errors.New("locked"))
		require.Error(t, b.Clear(context.Background()))
		assert.Equal(t, []string{"exec: DELETE FROM accessgen_storage"}, logged)
		assert.Equal(t, int64(1), b.Stats().Snapshot().Failures)
	})

	t.Run("average duration of an empty snapshot", func(t *testing.T) {
		assert.Zero(t, Snapshot{}.Mean())
	})
}
