package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sd-jukebox/internal/audio"
	"sd-jukebox/internal/catalog"
	"sd-jukebox/internal/engine"
	"sd-jukebox/internal/handlers"
	"sd-jukebox/internal/logging"
	"sd-jukebox/internal/metrics"
	"sd-jukebox/internal/middleware"
	"sd-jukebox/internal/startup"
	"sd-jukebox/internal/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	if config.MetricsEnabled {
		metrics.InitializeMetrics()
	}

	// One mount state, one source of truth: everything that touches the
	// removable root receives this instance.
	mount := storage.New(&storage.DirDriver{Root: config.RemovableDir}, config.Mount)

	// A missing card at boot is normal; the player runs internal-only.
	if err := mount.Mount(); err != nil {
		logging.Warn("no removable storage at startup (internal-only): %v", err)
	}

	scanner := catalog.NewScanner(config.InternalDir, mount)
	cat := scanner.Scan()
	logTrackListing(cat)

	speaker := audio.NewSpeaker()
	eng := engine.New(mount, config.InternalDir, speaker, config.Playback)

	h := handlers.New(mount, scanner, eng, cat)
	router := setupRouter(h, config)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, eng, mount)

	startup.LogServerStarted(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics())

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")

	if config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tracks", h.ListTracks).Methods("GET")
	api.HandleFunc("/rescan", h.Rescan).Methods("POST")
	api.HandleFunc("/play", h.Play).Methods("POST")
	api.HandleFunc("/playall", h.PlayAll).Methods("POST")
	api.HandleFunc("/stop", h.Stop).Methods("POST")
	api.HandleFunc("/status", h.GetStatus).Methods("GET")
	api.HandleFunc("/remount", h.Remount).Methods("POST")

	return r
}

func logTrackListing(cat *catalog.Catalog) {
	if cat.Len() == 0 {
		logging.Info("no audio files found; drop .wav or .mp3 files on either storage root")
		return
	}
	logging.Info("playlist (%d tracks):", cat.Len())
	for i, t := range cat.Tracks {
		logging.Info("  %d. %s [%s]", i+1, t.Name(), t.Root)
	}
}

func handleShutdown(srv *http.Server, eng *engine.Engine, mount *storage.Mount) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eng.Stop()
	if err := mount.Unmount(); err != nil {
		logging.Warn("unmount on shutdown: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}
	startup.LogShutdownComplete()
}
