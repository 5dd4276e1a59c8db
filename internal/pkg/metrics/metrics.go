// Package metrics 定義服務的 Prometheus 指標。
//
// 快取查詢依 kind（ingredient、recipe）與 result（hit、miss、unavailable）
// 分別計數，讓 Redis 故障在監控上與一般未命中區分開來。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookupsTotal 快取查詢次數
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_lookups_total",
			Help: "Total number of cache lookups by entity kind and result",
		},
		[]string{"kind", "result"},
	)

	// CacheWriteFailuresTotal 快取寫入失敗次數
	CacheWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_write_failures_total",
			Help: "Total number of failed best-effort cache writes",
		},
		[]string{"kind"},
	)

	// FeatureRebuildsTotal 特徵快照重建次數
	FeatureRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_feature_rebuilds_total",
			Help: "Total number of feature snapshot builds by outcome",
		},
		[]string{"outcome"},
	)

	// FeatureRebuildDuration 特徵快照建立耗時
	FeatureRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_feature_rebuild_duration_seconds",
			Help:    "Duration of feature snapshot builds in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// FeatureSnapshotIngredients 目前快照中的食材數量
	FeatureSnapshotIngredients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_feature_snapshot_ingredients",
			Help: "Number of ingredients in the published feature snapshot",
		},
	)

	// SubstituteRequestsTotal 替代食材查詢次數
	SubstituteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_substitute_requests_total",
			Help: "Total number of substitute lookups by outcome",
		},
		[]string{"outcome"},
	)

	// EmbeddingBreakerState 向量服務斷路器狀態（0 關閉、1 半開、2 開啟）
	EmbeddingBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_embedding_breaker_state",
			Help: "State of the embedding circuit breaker (0 closed, 1 half-open, 2 open)",
		},
	)

	// HTTPRequestDuration HTTP 請求耗時
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordCacheLookup 記錄一次快取查詢
func RecordCacheLookup(kind, result string) {
	CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordCacheWriteFailure 記錄一次快取寫入失敗
func RecordCacheWriteFailure(kind string) {
	CacheWriteFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordFeatureRebuild 記錄一次特徵快照建立
func RecordFeatureRebuild(ok bool, took time.Duration, ingredients int) {
	FeatureRebuildDuration.Observe(took.Seconds())
	if !ok {
		FeatureRebuildsTotal.WithLabelValues("failure").Inc()
		return
	}
	FeatureRebuildsTotal.WithLabelValues("success").Inc()
	FeatureSnapshotIngredients.Set(float64(ingredients))
}
