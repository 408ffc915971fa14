// Package gen provides the model and the emitter contract of the accessgen
// code generators.
//
// # Architecture
//
// Every pipeline follows the same flow:
//
//	Schema file (keys.go, errors.json, <mode>.go, asset directory)
//	        ↓
//	   compiler/load (parse, bootstrap when missing)
//	        ↓
//	   Model (validated, backend-agnostic)
//	        ↓
//	   Emitter (storage, catalog, theme, asset)
//	        ↓
//	   Module (rendered file, written atomically)
//
// # Key Types
//
//   - Config: options of one run (target, package, backends, locale, modes)
//   - Model: keys, messages, assets and modes with their Go identifiers
//   - Emitter: renders a Model into jennifer files
//   - Module: a rendered file with its destination path
//
// # Errors
//
// Failures are reported with typed errors that match a sentinel through
// errors.Is:
//
//	IOError            ErrIO
//	SchemaFormatError  ErrSchemaFormat (cause ErrBlockNotFound or ErrMalformedEntry)
//	DuplicateKeyError  ErrDuplicateKey
//	ConfigError        ErrMissingConfig
//	GenerationError    ErrGenerationFailed
package gen
