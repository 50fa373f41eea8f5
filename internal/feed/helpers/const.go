package helpers

import "time"

const (
	// DirMod is the default permission for created directories.
	DirMod = 0o755
	// FileMod is the default permission for created files.
	FileMod = 0o644

	// MaxCacheAge is how long a cached feed stays valid after it was saved.
	MaxCacheAge = 7 * 24 * time.Hour

	// FetchDefaultTimeout is the overall HTTP client timeout.
	FetchDefaultTimeout = 30 * time.Second
	// FetchDialContextTimeout is the dial timeout for outbound connections.
	FetchDialContextTimeout = 10 * time.Second
	// FetchDialContextKeepAlive is the TCP keep-alive for dials.
	FetchDialContextKeepAlive = 30 * time.Second
	// FetchForceAttemptHTTP2 enables HTTP/2 attempts when possible.
	FetchForceAttemptHTTP2 = true
	// FetchMaxIdleConns is the maximum number of idle connections.
	FetchMaxIdleConns = 100
	// FetchMaxIdleConnsPerHost limits idle connections per host.
	FetchMaxIdleConnsPerHost = 10
	// FetchIdleConnTimeout is the idle connection timeout.
	FetchIdleConnTimeout = 30 * time.Second
	// FetchTLSHandshakeTimeout is the TLS handshake timeout.
	FetchTLSHandshakeTimeout = 3 * time.Second
	// FetchExpectContinueTimeout is the expect-continue timeout.
	FetchExpectContinueTimeout = 1 * time.Second

	// ServerValidateInterval is how often the HTTP service re-validates the cache.
	ServerValidateInterval = time.Hour
	// ServerReadHeaderTimeout bounds header reads for the HTTP service.
	ServerReadHeaderTimeout = 10 * time.Second
	// ServerShutdownTimeout bounds graceful shutdown of the HTTP service.
	ServerShutdownTimeout = 5 * time.Second

	// BackendMemory keeps the cache in process memory.
	BackendMemory = "memory"
	// BackendFile keeps the cache in a JSON document on disk.
	BackendFile = "file"
	// BackendBolt keeps the cache in a BoltDB file.
	BackendBolt = "bolt"
	// BackendSQL keeps the cache in a SQLite database.
	BackendSQL = "sql"
	// BackendS3 keeps the cache in an S3-compatible bucket.
	BackendS3 = "s3"

	// StoreLockFile is the cache lock file name.
	StoreLockFile = ".go-zzfeed.lock"
	// StoreFeedFile is the JSON snapshot filename for the file backend.
	StoreFeedFile = "feed-store.json"
	// StoreFeedFileGzip is the compressed JSON snapshot filename for the file backend.
	StoreFeedFileGzip = "feed-store.json.gz"
	// StoreImagesDir is the directory holding image blobs for the file backend.
	StoreImagesDir = "images"
	// StoreBoltFile is the BoltDB filename.
	StoreBoltFile = "feed-store.db"
	// StoreSQLiteFile is the SQLite database filename.
	StoreSQLiteFile = "feed-store.sqlite"

	// StoreBucketFeed is the bucket holding the cached feed record.
	StoreBucketFeed = "feed"
	// StoreBucketItems is the nested bucket holding ordered feed items.
	StoreBucketItems = "items"
	// StoreBucketImages is the bucket holding image blobs keyed by URL.
	StoreBucketImages = "images"
	// StoreKeyTimestamp is the feed bucket key for the cache timestamp.
	StoreKeyTimestamp = "timestamp"
)
