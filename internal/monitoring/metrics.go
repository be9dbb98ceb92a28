// Package monitoring provides simple in-memory operational counters.
//
// For production, export these to Prometheus or similar.
package monitoring

import (
	"sync/atomic"
	"time"
)

// MetricsCollector counts orchestration events.
type MetricsCollector struct {
	startedAt time.Time

	requests   atomic.Int64
	successes  atomic.Int64
	rejections atomic.Int64

	infoRoutes       atomic.Int64
	bookingRoutes    atomic.Int64
	roiRoutes        atomic.Int64
	managementRoutes atomic.Int64

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	modelFailures atomic.Int64
}

// NewMetricsCollector creates a collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{startedAt: time.Now()}
}

// RecordRequest records one handled request.
func (mc *MetricsCollector) RecordRequest(success bool) {
	mc.requests.Add(1)
	if success {
		mc.successes.Add(1)
	}
}

// RecordRejection records an admission rejection.
func (mc *MetricsCollector) RecordRejection() { mc.rejections.Add(1) }

// RecordRoute records which specialist handled a request.
func (mc *MetricsCollector) RecordRoute(route string) {
	switch route {
	case "info":
		mc.infoRoutes.Add(1)
	case "booking":
		mc.bookingRoutes.Add(1)
	case "roi":
		mc.roiRoutes.Add(1)
	case "management":
		mc.managementRoutes.Add(1)
	}
}

// RecordCacheHit records a reply-cache hit.
func (mc *MetricsCollector) RecordCacheHit() { mc.cacheHits.Add(1) }

// RecordCacheMiss records a reply-cache miss.
func (mc *MetricsCollector) RecordCacheMiss() { mc.cacheMisses.Add(1) }

// RecordModelFailure records a recovered provider failure.
func (mc *MetricsCollector) RecordModelFailure() { mc.modelFailures.Add(1) }

// Stats returns a snapshot of all counters.
func (mc *MetricsCollector) Stats() map[string]int64 {
	return map[string]int64{
		"requests":         mc.requests.Load(),
		"successes":        mc.successes.Load(),
		"rejections":       mc.rejections.Load(),
		"route_info":       mc.infoRoutes.Load(),
		"route_booking":    mc.bookingRoutes.Load(),
		"route_roi":        mc.roiRoutes.Load(),
		"route_management": mc.managementRoutes.Load(),
		"cache_hits":       mc.cacheHits.Load(),
		"cache_misses":     mc.cacheMisses.Load(),
		"model_failures":   mc.modelFailures.Load(),
		"uptime_seconds":   int64(time.Since(mc.startedAt).Seconds()),
	}
}
