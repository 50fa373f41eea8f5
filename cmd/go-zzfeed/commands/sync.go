package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/cmd/go-zzfeed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/pipeline"
)

// Sync returns the CLI command that refreshes the cache from the remote feed.
func Sync() *cli.Command {
	flags := helpers.StorageFlags()
	flags = append(flags, helpers.RemoteFlags()...)

	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"s"},
		Usage:   "Load the remote feed, cache it and prefetch its images",
		Flags:   flags,
		Action: func(c *cli.Context) error {
			cfg, runtime, done, err := setup(c)
			if err != nil {
				return err
			}
			defer done()
			return pipeline.Sync(c.Context, cfg, runtime)
		},
	}
}
