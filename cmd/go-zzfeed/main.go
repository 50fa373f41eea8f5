package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/cmd/go-zzfeed/commands"
)

//nolint:gochecknoglobals
var (
	Version = "dev"
	Commit  = "0000000"
	Date    = "unknown"
	BuiltBy = "manual"
)

func main() {
	os.Exit(run())
}

// run configures and executes the CLI, returning the exit code.
func run() int {
	app := cli.NewApp()
	app.Name = "go-zzfeed"
	app.Usage = "Photo feed client with an offline cache"
	app.Version = fmt.Sprintf("%s (commit: %s, built: %s by %s) // %s", Version, Commit, Date, BuiltBy, runtime.Version())
	app.DefaultCommand = "sync"
	app.HideHelpCommand = true
	app.UseShortOptionHandling = true
	app.Commands = []*cli.Command{
		commands.Sync(),
		commands.Show(),
		commands.Validate(),
		commands.Image(),
		commands.Import(),
		commands.Clear(),
		commands.Serve(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		return 1
	}
	return 0
}
