package config

import (
	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
)

// S3Config defines configuration for the S3 cache backend.
type S3Config struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	Prefix       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	PathStyle    bool
}

// loadS3Config builds S3 config from CLI flags.
func loadS3Config(c *cli.Context) (S3Config, error) {
	cfg := S3Config{
		Bucket:       c.String("s3-bucket"),
		Prefix:       c.String("s3-prefix"),
		Endpoint:     c.String("s3-endpoint"),
		Region:       c.String("s3-region"),
		AccessKey:    c.String("s3-access-key"),
		SecretKey:    c.String("s3-secret-key"),
		SessionToken: c.String("s3-session-token"),
	}
	if cfg.Bucket == "" {
		return cfg, nil
	}
	cfg.Enabled = true

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return cfg, helpers.ErrS3EmptyCreds
	}
	cfg.PathStyle = !c.Bool("s3-path-style-disabled")
	return cfg, nil
}
