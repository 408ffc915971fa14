// Package accessgen is the runtime used by code generated with the
// accessgen command.
//
// Generated storage services wrap a *Store, which encodes values as JSON and
// delegates to a dialect.Backend:
//
//	b, err := file.Open("prefs.msgpack")
//	if err != nil {
//	    return err
//	}
//	svc := storage.NewStorageService(accessgen.NewStore(b,
//	    accessgen.WithLogger(logger),
//	))
//	svc.SetUserName(ctx, "alice")
//	name := svc.GetUserName(ctx) // *string, nil when missing
//
// Store is fail-soft: backend and codec errors are logged, reported to the
// optional ErrorHandler and replaced by neutral values.
package accessgen
