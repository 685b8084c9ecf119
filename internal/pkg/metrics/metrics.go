package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TileCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geostore_tile_cache_hits_total",
		Help: "Total tile cache hits",
	})
	TileCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geostore_tile_cache_misses_total",
		Help: "Total tile cache misses",
	})
	CacheErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geostore_cache_errors_total",
		Help: "Cache backend errors, by operation",
	}, []string{"op"})
	TileDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geostore_tile_duration_ms",
		Help:    "Tile generation duration in milliseconds (cache misses only)",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	RouteSegmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geostore_route_segments_total",
		Help: "Computed route segments by strategy (same_edge or graph)",
	}, []string{"strategy"})
	TilesWarmedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geostore_tiles_warmed_total",
		Help: "Tiles force-populated by the pre-warming job",
	})
)

func init() {
	prometheus.MustRegister(TileCacheHitsTotal)
	prometheus.MustRegister(TileCacheMissesTotal)
	prometheus.MustRegister(CacheErrorsTotal)
	prometheus.MustRegister(TileDurationMs)
	prometheus.MustRegister(RouteSegmentsTotal)
	prometheus.MustRegister(TilesWarmedTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
