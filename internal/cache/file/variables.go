package file

import "errors"

var errFeedPathEmpty = errors.New("feed store path is empty")

const (
	tempPrefix   = ".feed-store-"
	imagesPrefix = ".image-"
)
