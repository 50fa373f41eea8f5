package cache

import (
	"time"

	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
)

// Validate reports whether a feed cached at timestamp is still fresh at now.
// The boundary is exclusive: a feed exactly MaxCacheAge old is stale.
func Validate(timestamp, now time.Time) bool {
	return now.Before(timestamp.Add(helpers.MaxCacheAge))
}
