package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jukebox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Storage mount metrics
var (
	MountAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_mount_attempts_total",
			Help: "Total number of removable storage mount attempts",
		},
		[]string{"result"}, // "success", "error"
	)

	MountStateGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jukebox_mount_state",
			Help: "Current mount state (0=unmounted, 1=mounting, 2=mounted, 3=faulted)",
		},
	)

	StorageReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_storage_reads_total",
			Help: "Total number of guarded removable storage reads",
		},
		[]string{"status"}, // "success", "error", "rate_limited"
	)
)

// Catalog scan metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_scan_runs_total",
			Help: "Total number of catalog scans",
		},
		[]string{"status"}, // "full", "partial"
	)

	ScanTracksFound = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jukebox_scan_tracks_found",
			Help: "Number of tracks found by the last scan, per storage root",
		},
		[]string{"root"}, // "internal", "removable"
	)

	ScanRejectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_scan_rejects_total",
			Help: "Total number of files rejected during scans",
		},
		[]string{"reason"}, // "extension", "header"
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jukebox_scan_duration_seconds",
			Help:    "Catalog scan duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
	)
)

// Playback metrics
var (
	PlaybackTracksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_playback_tracks_total",
			Help: "Total number of tracks handed to the audio output",
		},
		[]string{"result"}, // "finished", "stopped", "failed"
	)

	PlaybackFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_playback_failures_total",
			Help: "Total number of per-track playback failures",
		},
		[]string{"reason"}, // "not_found", "unsupported_format", "io_fault", "decode_fault"
	)

	PlaybackRemountsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jukebox_playback_remounts_total",
			Help: "Total number of remount attempts triggered by storage faults during playback",
		},
	)
)
