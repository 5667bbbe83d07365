// cfs mirrors the resources of an AWS account into a local directory of
// JSON files that can be listed, searched and browsed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := Execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
