// Package metrics defines the Prometheus metrics exported by the jukebox
// service: HTTP traffic, removable storage mount health, catalog scans,
// and playback outcomes.
//
// Metrics are registered via promauto at package load. Call
// InitializeMetrics once at startup to pre-populate label combinations so
// that dashboards see every series from the first scrape.
package metrics
