package handlers

import (
	"encoding/json"
	"net/http"

	"sd-jukebox/internal/catalog"
	"sd-jukebox/internal/engine"
	"sd-jukebox/internal/logging"
	"sd-jukebox/internal/playlist"
	"sd-jukebox/internal/storage"
)

// PlayRequest selects a single track: by one-based index into the catalog,
// or by bare filename (internal root searched before removable, matching
// the original player's lookup order).
type PlayRequest struct {
	Index int    `json:"index,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Play starts playback of one track.
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat := h.Catalog()
	var track catalog.Track
	var ok bool
	switch {
	case req.Name != "":
		track, ok = cat.ByName(req.Name)
	case req.Index > 0:
		track, ok = cat.At(req.Index - 1)
	default:
		writeError(w, http.StatusBadRequest, "index or name required")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}

	if err := h.engine.PlayTrack(track); err != nil {
		writePlaybackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// PlayAllRequest configures a whole-catalog playback run.
type PlayAllRequest struct {
	Shuffle bool `json:"shuffle,omitempty"`
	Repeat  bool `json:"repeat,omitempty"`
	// LowQuality restricts the run to the catalog's low-quality view
	// (mono, ≤22050 Hz), the profile reliable on constrained hardware.
	LowQuality bool `json:"lowQuality,omitempty"`
}

// PlayAll starts a background playback run over the catalog. An empty or
// all-failed catalog completes normally with zero tracks played.
func (h *Handlers) PlayAll(w http.ResponseWriter, r *http.Request) {
	var req PlayAllRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if h.engine.IsPlaying() {
		writeError(w, http.StatusConflict, "already playing")
		return
	}

	cat := h.Catalog()
	if req.LowQuality {
		cat = catalog.LowQuality(cat)
	}
	cur := playlist.Build(cat, req.Shuffle, req.Repeat)

	logging.Info("starting playlist: %d track(s), shuffle=%v repeat=%v lowQuality=%v",
		cur.Len(), req.Shuffle, req.Repeat, req.LowQuality)
	go h.engine.PlayAll(cur)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"tracks":  cur.Len(),
		"shuffle": req.Shuffle,
		"repeat":  req.Repeat,
	})
}

// Stop halts playback. Idempotent; succeeds even when nothing is playing.
func (h *Handlers) Stop(w http.ResponseWriter, _ *http.Request) {
	h.engine.Stop()
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// StatusResponse reports the playback session and storage mount together.
type StatusResponse struct {
	Playback engine.SessionStatus `json:"playback"`
	Playing  bool                 `json:"playing"`
	Mount    storage.Status       `json:"mount"`
	Partial  bool                 `json:"partial"`
	Tracks   int                  `json:"tracks"`
}

// GetStatus returns the session, mount and catalog summary. Pure read.
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	cat := h.cat
	h.mu.RUnlock()

	resp := StatusResponse{
		Playback: h.engine.Status(),
		Playing:  h.engine.IsPlaying(),
		Mount:    h.mount.Status(),
	}
	if cat != nil {
		resp.Partial = cat.Partial
		resp.Tracks = cat.Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Remount forces a fresh mount attempt, the only way out of a faulted
// mount, then rescans.
func (h *Handlers) Remount(w http.ResponseWriter, _ *http.Request) {
	if err := h.mount.Mount(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"mount": h.mount.Status(),
			"error": err.Error(),
		})
		return
	}
	cat := h.rescan()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mount":  h.mount.Status(),
		"tracks": cat.Len(),
	})
}

func writePlaybackError(w http.ResponseWriter, err error) {
	switch engine.ReasonOf(err) {
	case engine.ReasonAlreadyPlaying:
		writeError(w, http.StatusConflict, err.Error())
	case engine.ReasonNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case engine.ReasonUnsupportedFormat:
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
