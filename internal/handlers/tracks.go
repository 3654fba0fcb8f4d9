package handlers

import (
	"net/http"

	"sd-jukebox/internal/catalog"
)

// TracksResponse is the track listing payload.
type TracksResponse struct {
	Tracks []catalog.Track `json:"tracks"`
	Count  int             `json:"count"`
	// Partial flags a degraded scan: the removable root was unavailable
	// and only internal entries are listed.
	Partial   bool   `json:"partial"`
	ScannedAt string `json:"scannedAt"`
}

// ListTracks returns the cached catalog. On a faulted mount this is the
// internal-only listing with the partial flag set, never an error.
func (h *Handlers) ListTracks(w http.ResponseWriter, _ *http.Request) {
	cat := h.Catalog()
	writeJSON(w, http.StatusOK, tracksResponse(cat))
}

// Rescan rebuilds the catalog from a fresh scan and returns the result.
func (h *Handlers) Rescan(w http.ResponseWriter, _ *http.Request) {
	cat := h.rescan()
	writeJSON(w, http.StatusOK, tracksResponse(cat))
}

func tracksResponse(cat *catalog.Catalog) TracksResponse {
	tracks := cat.Tracks
	if tracks == nil {
		tracks = []catalog.Track{}
	}
	return TracksResponse{
		Tracks:    tracks,
		Count:     len(tracks),
		Partial:   cat.Partial,
		ScannedAt: cat.ScannedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
