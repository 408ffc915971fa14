// Package sql implements dialect.BatchBackend on top of database/sql.
//
// Every storage key is one row of a two-column table:
//
//	CREATE TABLE accessgen_storage (
//	    item_key   TEXT NOT NULL PRIMARY KEY,
//	    item_value TEXT NOT NULL
//	)
//
// Writes are dialect-specific upserts, batch reads use IN (...) queries and
// batch writes or deletes run inside a single transaction.
//
// # Dialect Support
//
//	b, err := sql.Open(dialect.SQLite, "file:app.db")     // modernc.org/sqlite
//	b, err := sql.Open(dialect.Postgres, "postgres://...") // github.com/lib/pq
//	b, err := sql.Open(dialect.MySQL, "user:pass@/app")    // github.com/go-sql-driver/mysql
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := b.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Statistics
//
// Each backend counts its reads, writes and slow statements:
//
//	b, _ := sql.Open(dialect.Postgres, dsn,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowLog(nil),
//	)
//	fmt.Println(b.Stats().Snapshot())
package sql
