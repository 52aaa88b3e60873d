// vectorize converts raster images into SVG documents.
//
// Usage:
//
//	vectorize convert [--out=<dir>] [--report=<file.dot>] [--stats] <image>...
//	vectorize profiles [--profiles=<file>]
//	vectorize version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
