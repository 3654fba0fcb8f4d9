package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"sd-jukebox/internal/catalog"
	"sd-jukebox/internal/engine"
	"sd-jukebox/internal/logging"
	"sd-jukebox/internal/storage"
)

// Handlers bundles the request handlers for the control surface with the
// components they drive. It caches the catalog from the last scan and
// rescans on demand; the cache is never patched, only replaced.
type Handlers struct {
	mount   *storage.Mount
	scanner *catalog.Scanner
	engine  *engine.Engine

	mu  sync.RWMutex
	cat *catalog.Catalog
}

// New creates the handler set. initial may be nil; the first ListTracks or
// Rescan will populate it.
func New(mount *storage.Mount, scanner *catalog.Scanner, eng *engine.Engine, initial *catalog.Catalog) *Handlers {
	return &Handlers{
		mount:   mount,
		scanner: scanner,
		engine:  eng,
		cat:     initial,
	}
}

// Catalog returns the cached catalog, scanning first if none exists yet.
func (h *Handlers) Catalog() *catalog.Catalog {
	h.mu.RLock()
	cat := h.cat
	h.mu.RUnlock()
	if cat != nil {
		return cat
	}
	return h.rescan()
}

func (h *Handlers) rescan() *catalog.Catalog {
	cat := h.scanner.Scan()
	h.mu.Lock()
	h.cat = cat
	h.mu.Unlock()
	return cat
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
