package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/cmd/go-zzfeed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/pipeline"
)

// Show returns the CLI command that prints the cached feed.
func Show() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the cached feed without network access",
		Flags: helpers.StorageFlags(),
		Action: func(c *cli.Context) error {
			cfg, runtime, done, err := setup(c)
			if err != nil {
				return err
			}
			defer done()
			return pipeline.Show(c.Context, cfg, runtime)
		},
	}
}

// Validate returns the CLI command that evicts a stale or unreadable cache.
func Validate() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Remove the cached feed when it is expired or unreadable",
		Flags:   helpers.StorageFlags(),
		Action: func(c *cli.Context) error {
			cfg, runtime, done, err := setup(c)
			if err != nil {
				return err
			}
			defer done()
			return pipeline.Validate(c.Context, cfg, runtime)
		},
	}
}

// Clear returns the CLI command that wipes the cache.
func Clear() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove the cached feed and all cached images",
		Flags: helpers.StorageFlags(),
		Action: func(c *cli.Context) error {
			cfg, runtime, done, err := setup(c)
			if err != nil {
				return err
			}
			defer done()
			return pipeline.Clear(c.Context, cfg, runtime)
		},
	}
}
