package helpers

import "errors"

var (
	// ErrConfigIsNil indicates a nil config was provided.
	ErrConfigIsNil = errors.New("config is nil")
	// ErrUnsupportedBackend indicates the requested cache backend is unknown.
	ErrUnsupportedBackend = errors.New("unsupported cache backend")
	// ErrFeedURLEmpty indicates no remote feed URL was configured.
	ErrFeedURLEmpty = errors.New("feed url is empty")
	// ErrInvalidFeedURL indicates the configured feed URL is not an absolute URL.
	ErrInvalidFeedURL = errors.New("invalid feed url")
	// ErrImageURLEmpty indicates no image URL was provided.
	ErrImageURLEmpty = errors.New("image url is empty")
	// ErrInvalidImageURL indicates an image URL could not be parsed.
	ErrInvalidImageURL = errors.New("invalid image url")
	// ErrS3EmptyCreds indicates S3 cache credentials are required but missing.
	ErrS3EmptyCreds = errors.New("s3 cache requires access/secret keys when GO_ZZFEED_S3_BUCKET is set")
	// ErrS3BucketMissing indicates the s3 backend was selected without a bucket.
	ErrS3BucketMissing = errors.New("s3 backend requires --s3-bucket")

	// ErrCacheDirEmpty indicates the cache directory is empty.
	ErrCacheDirEmpty = errors.New("cache directory is empty")
	// ErrAnotherInstanceIsRunning indicates another instance is already running.
	ErrAnotherInstanceIsRunning = errors.New("another instance is running")

	// ErrUnsupportedFeedFormat indicates an import document has an unknown format.
	ErrUnsupportedFeedFormat = errors.New("unsupported feed document format")
	// ErrInvalidFeedEntry indicates an import document entry is invalid.
	ErrInvalidFeedEntry = errors.New("invalid feed entry")
	// ErrImagePrefetchFailed indicates some feed images could not be loaded.
	ErrImagePrefetchFailed = errors.New("image prefetch failed")
	// ErrFileIsEmpty indicates a file is empty.
	ErrFileIsEmpty = errors.New("file is empty")
)
