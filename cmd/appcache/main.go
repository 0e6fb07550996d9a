// Command appcache manages a local cache of marketplace application metadata.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/appcache/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
