// Package schema holds the entries parsed out of accessgen schema files.
//
// A schema is the human-edited description that drives generation. Each
// pipeline reads its own shape:
//
//   - storage: a Go struct declaration (keys.go) whose fields are the
//     persisted keys, see [Key] and [TypeExpr];
//   - errors: a code → locale → text catalog (errors.json or errors.yaml),
//     see [Message];
//   - theme: one scaffolded palette file per mode, see [Mode];
//   - images/svgs: the asset files found in the target directory, see [Asset].
//
// Entries are immutable once parsed and are re-derived on every run.
//
// # Storage schema
//
//	package storage
//
//	import "time"
//
//	type Storage struct {
//	    // UserName is the display name of the signed-in user.
//	    UserName  string
//	    LastSync  time.Time
//	    Retry     struct {
//	        Count int
//	        Delay time.Duration
//	    }
//	}
//
// # Message schema
//
//	{
//	    "UNKNOWN_ERROR": {"en": "Unknown error occurred", "vi": "Đã xảy ra lỗi không xác định"}
//	}
package schema
