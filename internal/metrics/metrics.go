package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedLoads counts cached feed loads by result (hit|empty|stale|error).
	FeedLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zzfeed_cache_feed_loads_total",
			Help: "Total number of cached feed loads",
		},
		[]string{"result"},
	)

	// FeedSaves counts cached feed saves by result (success|delete_error|insert_error).
	FeedSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zzfeed_cache_feed_saves_total",
			Help: "Total number of cached feed saves",
		},
		[]string{"result"},
	)

	// FeedEvictions counts cached feeds removed by validation (stale|unreadable).
	FeedEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zzfeed_cache_feed_evictions_total",
			Help: "Total number of cached feeds evicted during validation",
		},
		[]string{"reason"},
	)

	// ImageLoads counts cached image loads by result (hit|not_found|error).
	ImageLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zzfeed_cache_image_loads_total",
			Help: "Total number of cached image data loads",
		},
		[]string{"result"},
	)

	// RemoteRequests counts remote requests by kind (feed|image) and result (success|connectivity|invalid).
	RemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zzfeed_remote_requests_total",
			Help: "Total number of remote requests",
		},
		[]string{"kind", "result"},
	)
)
