package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, result := range []string{"success", "error"} {
		MountAttemptsTotal.WithLabelValues(result)
	}

	for _, status := range []string{"success", "error", "rate_limited"} {
		StorageReadsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"full", "partial"} {
		ScanRunsTotal.WithLabelValues(status)
	}

	for _, root := range []string{"internal", "removable"} {
		ScanTracksFound.WithLabelValues(root)
	}

	for _, reason := range []string{"extension", "header"} {
		ScanRejectsTotal.WithLabelValues(reason)
	}

	for _, result := range []string{"finished", "stopped", "failed"} {
		PlaybackTracksTotal.WithLabelValues(result)
	}

	for _, reason := range []string{"not_found", "unsupported_format", "io_fault", "decode_fault"} {
		PlaybackFailuresTotal.WithLabelValues(reason)
	}
}
