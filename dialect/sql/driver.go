package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/syssam/accessgen/dialect"
)

// DefaultTable is the name of the key/value table used when no WithTable
// option is given.
const DefaultTable = "accessgen_storage"

// maxBatchArgs bounds the number of placeholders of one IN (...) query.
const maxBatchArgs = 500

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// ExecQuerier wraps the standard Exec and Query methods. Both *sql.DB and
// *sql.Tx implement it.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Backend is a dialect.BatchBackend storing every key as one row of a
// two-column table.
type Backend struct {
	db      *sql.DB
	dialect string
	table   string
	closed  atomic.Bool

	stats     *Stats
	slowAfter time.Duration
	onSlow    SlowFunc
	debug     DebugFunc
}

// Option configures a Backend.
type Option func(*Backend)

// WithTable sets the name of the key/value table.
func WithTable(name string) Option {
	return func(b *Backend) {
		b.table = name
	}
}

// Open wraps the database/sql.Open method and returns a Backend for the
// given dialect. The dialect name doubles as the database/sql driver name.
func Open(dialectName, source string, opts ...Option) (*Backend, error) {
	db, err := sql.Open(dialectName, source)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", dialectName, err)
	}
	b, err := OpenDB(dialectName, db, opts...)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return b, nil
}

// OpenDB wraps the given database/sql.DB with a Backend. The table is not
// created until Migrate is called.
func OpenDB(dialectName string, db *sql.DB, opts ...Option) (*Backend, error) {
	if db == nil {
		return nil, errors.New("dialect/sql: nil *sql.DB")
	}
	b := &Backend{
		db:        db,
		dialect:   normalize(dialectName),
		table:     DefaultTable,
		stats:     &Stats{},
		slowAfter: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(b)
	}
	switch b.dialect {
	case dialect.SQLite, dialect.Postgres, dialect.MySQL:
	default:
		return nil, fmt.Errorf("dialect/sql: unsupported dialect %q", dialectName)
	}
	if !isValidIdentifier(b.table) {
		return nil, fmt.Errorf("dialect/sql: invalid table name %q", b.table)
	}
	return b, nil
}

// normalize maps a driver name to its dialect. Wrapped drivers (e.g.
// "sqlite3", "postgres-otel") resolve by prefix.
func normalize(name string) string {
	for _, d := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(name, d) {
			return d
		}
	}
	if name == "pgx" {
		return dialect.Postgres
	}
	return name
}

// DB returns the underlying *sql.DB instance.
func (b *Backend) DB() *sql.DB { return b.db }

// Dialect returns the SQL dialect of the backend.
func (b *Backend) Dialect() string { return b.dialect }

// Table returns the name of the key/value table.
func (b *Backend) Table() string { return b.table }

// Close closes the underlying database.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}

// Migrate creates the key/value table when it does not exist.
func (b *Backend) Migrate(ctx context.Context) error {
	if err := b.exec(ctx, b.db, b.createQuery()); err != nil {
		return fmt.Errorf("dialect/sql: create table %s: %w", b.table, err)
	}
	return nil
}

// Read implements dialect.Backend.
func (b *Backend) Read(ctx context.Context, key string) (string, bool, error) {
	if b.closed.Load() {
		return "", false, dialect.ErrClosed
	}
	query := "SELECT item_value FROM " + b.table + " WHERE item_key = " + b.placeholder(1)
	var text string
	err := b.queryRow(ctx, query, []any{key}, &text)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("dialect/sql: read %q: %w", key, err)
	}
	return text, true, nil
}

// Write implements dialect.Backend.
func (b *Backend) Write(ctx context.Context, key, text string) error {
	if b.closed.Load() {
		return dialect.ErrClosed
	}
	if err := b.exec(ctx, b.db, b.upsertQuery(), key, text); err != nil {
		return fmt.Errorf("dialect/sql: write %q: %w", key, err)
	}
	return nil
}

// Delete implements dialect.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if b.closed.Load() {
		return dialect.ErrClosed
	}
	query := "DELETE FROM " + b.table + " WHERE item_key = " + b.placeholder(1)
	if err := b.exec(ctx, b.db, query, key); err != nil {
		return fmt.Errorf("dialect/sql: delete %q: %w", key, err)
	}
	return nil
}

// Clear implements dialect.Backend.
func (b *Backend) Clear(ctx context.Context) error {
	if b.closed.Load() {
		return dialect.ErrClosed
	}
	if err := b.exec(ctx, b.db, "DELETE FROM "+b.table); err != nil {
		return fmt.Errorf("dialect/sql: clear: %w", err)
	}
	return nil
}

// ReadMany implements dialect.BatchBackend. Keys are read with IN queries of
// at most maxBatchArgs keys each.
func (b *Backend) ReadMany(ctx context.Context, keys []string) (map[string]string, error) {
	if b.closed.Load() {
		return nil, dialect.ErrClosed
	}
	out := make(map[string]string, len(keys))
	for _, chunk := range chunks(keys, maxBatchArgs) {
		query, args := b.inQuery("SELECT item_key, item_value FROM "+b.table, chunk)
		if err := b.queryPairs(ctx, query, args, out); err != nil {
			return nil, fmt.Errorf("dialect/sql: read many: %w", err)
		}
	}
	return out, nil
}

// WriteMany implements dialect.BatchBackend. All items are written inside
// one transaction.
func (b *Backend) WriteMany(ctx context.Context, items []dialect.Item) error {
	if b.closed.Load() {
		return dialect.ErrClosed
	}
	if len(items) == 0 {
		return nil
	}
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		query := b.upsertQuery()
		for _, it := range items {
			if err := b.exec(ctx, tx, query, it.Key, it.Text); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("dialect/sql: write many: %w", err)
	}
	return nil
}

// DeleteMany implements dialect.BatchBackend. All keys are removed inside
// one transaction.
func (b *Backend) DeleteMany(ctx context.Context, keys []string) error {
	if b.closed.Load() {
		return dialect.ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		for _, chunk := range chunks(keys, maxBatchArgs) {
			query, args := b.inQuery("DELETE FROM "+b.table, chunk)
			if err := b.exec(ctx, tx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("dialect/sql: delete many: %w", err)
	}
	return nil
}

func (b *Backend) inTx(ctx context.Context, fn func(*sql.Tx) error) (rerr error) {
	b.log(ctx, "begin transaction")
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if rerr != nil {
			b.log(ctx, "rollback transaction")
			rerr = errors.Join(rerr, tx.Rollback())
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	b.log(ctx, "commit transaction")
	return tx.Commit()
}

func (b *Backend) exec(ctx context.Context, ex ExecQuerier, query string, args ...any) error {
	b.log(ctx, "exec: "+query, args)
	start := time.Now()
	_, err := ex.ExecContext(ctx, query, args...)
	b.record(ctx, query, args, start, err, false)
	return err
}

func (b *Backend) queryRow(ctx context.Context, query string, args []any, dest *string) error {
	b.log(ctx, "query: "+query, args)
	start := time.Now()
	err := b.db.QueryRowContext(ctx, query, args...).Scan(dest)
	failed := err
	if errors.Is(err, sql.ErrNoRows) {
		failed = nil
	}
	b.record(ctx, query, args, start, failed, true)
	return err
}

func (b *Backend) queryPairs(ctx context.Context, query string, args []any, out map[string]string) (rerr error) {
	b.log(ctx, "query: "+query, args)
	start := time.Now()
	defer func() { b.record(ctx, query, args, start, rerr, true) }()
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { rerr = errors.Join(rerr, rows.Close()) }()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		out[k] = v
	}
	return rows.Err()
}

func (b *Backend) placeholder(i int) string {
	if b.dialect == dialect.Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// inQuery appends "WHERE item_key IN (...)" to prefix.
func (b *Backend) inQuery(prefix string, keys []string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(" WHERE item_key IN (")
	args := make([]any, len(keys))
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.placeholder(i + 1))
		args[i] = k
	}
	sb.WriteByte(')')
	return sb.String(), args
}

func (b *Backend) createQuery() string {
	if b.dialect == dialect.MySQL {
		return "CREATE TABLE IF NOT EXISTS " + b.table + " (item_key VARCHAR(191) NOT NULL PRIMARY KEY, item_value LONGTEXT NOT NULL)"
	}
	return "CREATE TABLE IF NOT EXISTS " + b.table + " (item_key TEXT NOT NULL PRIMARY KEY, item_value TEXT NOT NULL)"
}

func (b *Backend) upsertQuery() string {
	insert := "INSERT INTO " + b.table + " (item_key, item_value) VALUES (" + b.placeholder(1) + ", " + b.placeholder(2) + ")"
	switch b.dialect {
	case dialect.MySQL:
		return insert + " ON DUPLICATE KEY UPDATE item_value = VALUES(item_value)"
	case dialect.Postgres:
		return insert + " ON CONFLICT (item_key) DO UPDATE SET item_value = EXCLUDED.item_value"
	default:
		return insert + " ON CONFLICT(item_key) DO UPDATE SET item_value = excluded.item_value"
	}
}

func chunks(keys []string, n int) [][]string {
	var out [][]string
	for len(keys) > n {
		out = append(out, keys[:n])
		keys = keys[n:]
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}

var _ dialect.BatchBackend = (*Backend)(nil)
