package helpers

import "time"

const (
	appDir                  = "go-zzfeed"
	dirSuffix               = ".cache/" + appDir
	defaultHomeDir          = "/root"
	defaultTimeout          = 30 * time.Second
	defaultConfigPath       = "zzfeed.toml"
	defaultBackend          = "file"
	defaultListen           = ":8080"
	defaultLogLevel         = "warn"
	defaultValidateInterval = time.Hour
)
