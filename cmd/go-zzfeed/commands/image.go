package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/cmd/go-zzfeed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/pipeline"
)

// Image returns the CLI command that fetches one image through the cache.
func Image() *cli.Command {
	flags := helpers.StorageFlags()
	flags = append(flags, &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file, defaults to the last segment of the image URL",
	})

	return &cli.Command{
		Name:      "image",
		Usage:     "Load an image from the cache or the network and save it",
		ArgsUsage: "<image-url>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			cfg, runtime, done, err := setup(c)
			if err != nil {
				return err
			}
			defer done()
			return pipeline.Image(c.Context, cfg, runtime, c.Args().First(), c.String("output"))
		},
	}
}

// Import returns the CLI command that seeds the cache from a feed document.
func Import() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the cached feed with a YAML or JSON feed document",
		ArgsUsage: "<feed.yaml|feed.json>",
		Flags:     helpers.StorageFlags(),
		Action: func(c *cli.Context) error {
			cfg, runtime, done, err := setup(c)
			if err != nil {
				return err
			}
			defer done()
			return pipeline.Import(c.Context, cfg, runtime, c.Args().First())
		},
	}
}
