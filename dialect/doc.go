// Package dialect defines the storage capability set used by generated
// accessgen storage services.
//
// # Backend Interface
//
// Every backend implements four operations over encoded texts:
//
//	type Backend interface {
//	    Read(ctx context.Context, key string) (string, bool, error)
//	    Write(ctx context.Context, key, text string) error
//	    Delete(ctx context.Context, key string) error
//	    Clear(ctx context.Context) error
//	}
//
// Backends with native multi-key operations also implement BatchBackend.
// accessgen.Store falls back to per-key calls for backends that do not.
//
// # Dialect Constants
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//	dialect.File     = "file"
//
// # Sub-packages
//
//   - dialect/sql: key/value table over database/sql (SQLite, PostgreSQL, MySQL)
//   - dialect/file: single msgpack file with atomic replacement
package dialect
