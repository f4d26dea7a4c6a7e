// Command gristle detects, converts and summarises delimited text files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/willzfarmer/gristle/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], cli.DefaultStreams())
	stop()
	os.Exit(code)
}
