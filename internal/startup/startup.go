package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"sd-jukebox/internal/engine"
	"sd-jukebox/internal/logging"
	"sd-jukebox/internal/storage"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Config holds all application configuration
type Config struct {
	InternalDir  string
	RemovableDir string
	Port         string

	Mount    storage.Config
	Playback engine.Config

	MetricsEnabled  bool
	LogHealthChecks bool
}

// LoadConfig loads and validates configuration from environment variables.
// The storage intervals default to the values calibrated against the
// target hardware but stay overridable so other devices can be tuned
// without touching core logic.
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	mountCfg := storage.DefaultConfig()
	playCfg := engine.DefaultConfig()

	cfg := &Config{
		InternalDir:     getEnv("INTERNAL_DIR", "/music"),
		RemovableDir:    getEnv("REMOVABLE_DIR", "/media/sd"),
		Port:            getEnv("PORT", "8080"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", false),
	}

	mountCfg.SettleDelay = getEnvDuration("SETTLE_DELAY", mountCfg.SettleDelay)
	mountCfg.ReadInterval = getEnvDuration("READ_INTERVAL", mountCfg.ReadInterval)
	mountCfg.MaxAttempts = getEnvInt("MOUNT_ATTEMPTS", mountCfg.MaxAttempts)
	mountCfg.InitialBackoff = getEnvDuration("MOUNT_BACKOFF", mountCfg.InitialBackoff)
	mountCfg.MaxBackoff = getEnvDuration("MOUNT_MAX_BACKOFF", mountCfg.MaxBackoff)
	playCfg.TrackGap = getEnvDuration("TRACK_GAP", playCfg.TrackGap)
	cfg.Mount = mountCfg
	cfg.Playback = playCfg

	logging.Info("  INTERNAL_DIR:      %s", cfg.InternalDir)
	logging.Info("  REMOVABLE_DIR:     %s", cfg.RemovableDir)
	logging.Info("  PORT:              %s", cfg.Port)
	logging.Info("  SETTLE_DELAY:      %s", mountCfg.SettleDelay)
	logging.Info("  READ_INTERVAL:     %s", mountCfg.ReadInterval)
	logging.Info("  MOUNT_ATTEMPTS:    %d", mountCfg.MaxAttempts)
	logging.Info("  MOUNT_BACKOFF:     %s", mountCfg.InitialBackoff)
	logging.Info("  MOUNT_MAX_BACKOFF: %s", mountCfg.MaxBackoff)
	logging.Info("  TRACK_GAP:         %s", playCfg.TrackGap)
	logging.Info("  METRICS_ENABLED:   %v", cfg.MetricsEnabled)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	internalDir, err := filepath.Abs(cfg.InternalDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve internal directory path: %w", err)
	}
	cfg.InternalDir = internalDir

	if _, err := os.Stat(cfg.InternalDir); err != nil {
		return nil, fmt.Errorf("internal directory unavailable: %w", err)
	}

	return cfg, nil
}

func printBanner() {
	logging.Info("============================================================")
	logging.Info("SD-Jukebox %s (%s, built %s, %s %s/%s)",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	logging.Info("============================================================")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// LogServerStarted logs the listening address and total startup time.
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("listening on :%s (startup %v)", port, elapsed.Round(time.Millisecond))
}

// LogShutdownInitiated logs the start of a graceful shutdown.
func LogShutdownInitiated(signal string) {
	logging.Info("received %s, shutting down", signal)
}

// LogShutdownComplete logs the end of a graceful shutdown.
func LogShutdownComplete() {
	logging.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logging.Warn("  invalid %s, using default: %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logging.Warn("  invalid %s, using default: %s", key, defaultValue)
	}
	return defaultValue
}
