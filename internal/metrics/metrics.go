package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SelectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "countymap_selections_total",
		Help: "Total select commands that changed or confirmed the selection",
	})
	SelectionsIgnoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "countymap_selections_ignored_total",
		Help: "Total select commands for names absent from the catalog",
	})
	ClearsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "countymap_clears_total",
		Help: "Total clear commands",
	})
	RepaintsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "countymap_repaints_total",
		Help: "Total full re-style passes",
	})
	RepaintDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "countymap_repaint_duration_ms",
		Help:    "Duration of a re-style pass including delivery to all surfaces",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})
	SurfacesConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "countymap_surfaces_connected",
		Help: "Currently registered map surfaces",
	})
	SurfaceDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "countymap_surface_dropped_total",
		Help: "Map surfaces dropped by reason",
	}, []string{"reason"})
	SurfaceHeartbeatTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "countymap_surface_heartbeat_total",
		Help: "Surface heartbeat count by status",
	}, []string{"status"})
	GeoJSONCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "countymap_geojson_cache_hits_total",
		Help: "Total redis cache hits for rendered geojson",
	})
	GeoJSONCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "countymap_geojson_cache_misses_total",
		Help: "Total redis cache misses for rendered geojson",
	})
	LocateRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "countymap_locate_requests_total",
		Help: "IP locate requests by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(SelectionsTotal)
	prometheus.MustRegister(SelectionsIgnoredTotal)
	prometheus.MustRegister(ClearsTotal)
	prometheus.MustRegister(RepaintsTotal)
	prometheus.MustRegister(RepaintDurationMs)
	prometheus.MustRegister(SurfacesConnected)
	prometheus.MustRegister(SurfaceDroppedTotal)
	prometheus.MustRegister(SurfaceHeartbeatTotal)
	prometheus.MustRegister(GeoJSONCacheHitsTotal)
	prometheus.MustRegister(GeoJSONCacheMissesTotal)
	prometheus.MustRegister(LocateRequestsTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
