// accessgen generates typed Go accessors from small declarative schemas:
// storage services, localized error catalogs, theme palettes and embedded
// asset indexes.
//
//	accessgen generate-storage --dir=@/internal/storage --sql --file
//	accessgen generate-errors --dir=@/internal/errs --locale=vi
//	accessgen generate-theme --dir=@/ui/theme --light --dark
//	accessgen generate-images --dir=@/assets/images
//	accessgen generate-svgs --dir=@/assets/icons
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
