package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/cmd/go-zzfeed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/server"
)

// Serve returns the CLI command that runs the HTTP service.
func Serve() *cli.Command {
	flags := helpers.StorageFlags()
	flags = append(flags, helpers.RemoteFlags()...)
	flags = append(flags, helpers.ServerFlags()...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the feed and images over HTTP",
		Flags: flags,
		Action: func(c *cli.Context) error {
			cfg, runtime, done, err := setup(c)
			if err != nil {
				return err
			}
			defer done()
			return server.Serve(c.Context, cfg, runtime)
		},
	}
}
