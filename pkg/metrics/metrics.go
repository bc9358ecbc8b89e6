package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TileRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_requests_total",
		Help: "Total number of tile resolutions",
	})

	TileResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_resolutions_total",
		Help: "Tile resolutions by the tier that answered them",
	}, []string{"source"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_upstream_requests_total",
		Help: "Total number of upstream tile fetches",
	}, []string{"provider", "result"})

	UpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tile_upstream_latency_seconds",
		Help:    "Latency of upstream tile fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_decode_errors_total",
		Help: "Total number of tile payloads that failed to decode",
	}, []string{"tier"})

	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_storage_errors_total",
		Help: "Total number of disk cache storage errors",
	}, []string{"operation"})

	DiskCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tile_disk_cache_entries",
		Help: "Number of occupied disk cache slots",
	})

	DiskCacheCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tile_disk_cache_capacity",
		Help: "Configured number of disk cache slots",
	})
)
