// Command httpget fetches a URL after running it through the URL gate.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jongio/httpio/cliout"
	"github.com/jongio/httpio/version"
)

// Set via ldflags at build time.
var (
	Version   = "0.0.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	info := version.New("httpget")
	info.Version = Version
	info.BuildDate = BuildDate
	info.GitCommit = GitCommit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(info, defaultDeps()).ExecuteContext(ctx); err != nil {
		if !cliout.IsJSON() {
			cliout.Error("%v", err)
			var hinted *hintedError
			if errors.As(err, &hinted) {
				cliout.Info("%s", hinted.hint)
			}
		}
		stop()
		os.Exit(1)
	}
}
