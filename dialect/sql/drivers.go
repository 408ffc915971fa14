package sql

// Drivers registered for Open. Their database/sql names match the dialect
// names: "sqlite", "postgres" and "mysql".
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)
