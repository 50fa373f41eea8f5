package s3

import (
	"errors"
	"time"
)

var (
	errS3BucketIsEmpty       = errors.New("s3 bucket is empty")
	errS3HTTPClientIsNil     = errors.New("s3 http client is nil")
	errS3InvalidEndpoint     = errors.New("s3 invalid endpoint")
	errS3NotFound            = errors.New("s3 object not found")
	errS3BucketNotFound      = errors.New("s3 bucket not found")
	errS3PreconditionFailed  = errors.New("s3 precondition failed")
	errS3RequestFailed       = errors.New("s3 request failed")
	errS3LockAlreadyExists   = errors.New("s3 lock already exists")
	errS3LockTTLIsInvalid    = errors.New("s3 lock TTL is invalid")
	errS3LockTimestampAbsent = errors.New("s3 lock timestamp is missing")
)

const (
	emptySHA256   = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	defaultRegion = "us-east-1"

	statePrefix  = "state"
	imagesPrefix = "images"
	locksPrefix  = "locks"
	feedObject   = "feed.json.gz"
	lockObject   = "feed.lock"
	lockTTL      = 10 * time.Minute
)
