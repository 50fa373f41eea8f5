package cache

import "go.uber.org/zap"

type options struct {
	log *zap.Logger
}

// Option configures a local loader.
type Option func(*options)

// WithLogger sets the logger used for cache decisions.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
