package catalog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sd-jukebox/internal/logging"
	"sd-jukebox/internal/metrics"
	"sd-jukebox/internal/storage"

	"github.com/go-audio/wav"
)

var errInvalidWAV = errors.New("wav header unparseable")

// AudioExtensions maps file extensions to their track format.
var AudioExtensions = map[string]Format{
	".wav": FormatWAV,
	".mp3": FormatMP3,
}

// Scanner builds the track catalog across the internal flash root and the
// removable root. The internal root is plain local filesystem; the
// removable root is only touched through the injected mount so the
// settling and rate-limit invariants hold.
type Scanner struct {
	internalDir string
	mount       *storage.Mount
}

// NewScanner creates a Scanner over the given internal directory and
// removable storage mount.
func NewScanner(internalDir string, mount *storage.Mount) *Scanner {
	return &Scanner{
		internalDir: internalDir,
		mount:       mount,
	}
}

// Scan rebuilds the catalog from scratch. The internal root is listed
// unconditionally; the removable root only if the mount can be brought up,
// and then inside a single guarded read (one scan counts as one storage
// operation, so the inter-read interval spaces successive scans, not the
// individual header probes within one).
//
// A removable failure degrades rather than aborts: the returned catalog
// holds the internal entries and Partial is set. Scanning an unchanged
// filesystem twice yields catalogs identical in order and content.
func (s *Scanner) Scan() *Catalog {
	start := time.Now()
	cat := &Catalog{ScannedAt: start}

	internal := s.scanInternal()
	cat.Tracks = append(cat.Tracks, internal...)

	removable, partial := s.scanRemovable()
	cat.Tracks = append(cat.Tracks, removable...)
	cat.Partial = partial

	status := "full"
	if cat.Partial {
		status = "partial"
	}
	metrics.ScanRunsTotal.WithLabelValues(status).Inc()
	metrics.ScanTracksFound.WithLabelValues(string(RootInternal)).Set(float64(len(internal)))
	metrics.ScanTracksFound.WithLabelValues(string(RootRemovable)).Set(float64(len(removable)))
	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	logging.Info("scan complete: %d internal, %d removable, partial=%v (%v)",
		len(internal), len(removable), cat.Partial, time.Since(start).Round(time.Millisecond))
	return cat
}

func (s *Scanner) scanInternal() []Track {
	entries, err := os.ReadDir(s.internalDir)
	if err != nil {
		logging.Error("internal root unreadable: %v", err)
		return nil
	}

	var tracks []Track
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		t, ok := s.admit(e.Name(), RootInternal, func() (storage.File, error) {
			return os.Open(filepath.Join(s.internalDir, e.Name()))
		})
		if ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// scanRemovable returns the removable tracks and whether the scan degraded
// to internal-only.
func (s *Scanner) scanRemovable() ([]Track, bool) {
	if err := s.mount.EnsureMounted(); err != nil {
		logging.Warn("removable root unavailable, internal-only catalog: %v", err)
		return nil, true
	}

	var tracks []Track
	err := s.mount.GuardedRead(func(h storage.Handle) error {
		entries, err := h.ListDir(".")
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Dir || strings.HasPrefix(e.Name, ".") {
				continue
			}
			name := e.Name
			t, ok := s.admit(name, RootRemovable, func() (storage.File, error) {
				return h.OpenFile(name)
			})
			if ok {
				tracks = append(tracks, t)
			}
		}
		return nil
	})
	if err != nil {
		logging.Warn("removable scan failed, internal-only catalog: %v", err)
		return nil, true
	}
	return tracks, false
}

// admit decides whether a file becomes a track. MP3 is admitted by
// extension alone; WAV must yield a parseable header. A rejected file is
// logged and skipped, never fatal for the scan.
func (s *Scanner) admit(name string, root StorageRoot, open func() (storage.File, error)) (Track, bool) {
	format, ok := AudioExtensions[strings.ToLower(filepath.Ext(name))]
	if !ok {
		metrics.ScanRejectsTotal.WithLabelValues("extension").Inc()
		logging.Debug("skipping %s/%s: unsupported extension", root, name)
		return Track{}, false
	}

	t := Track{Path: name, Root: root, Format: format}
	if format != FormatWAV {
		return t, true
	}

	f, err := open()
	if err != nil {
		metrics.ScanRejectsTotal.WithLabelValues("header").Inc()
		logging.Warn("rejecting %s/%s: open failed: %v", root, name, err)
		return Track{}, false
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Debug("close %s/%s: %v", root, name, cerr)
		}
	}()

	rate, channels, depth, err := readWAVHeader(f)
	if err != nil {
		metrics.ScanRejectsTotal.WithLabelValues("header").Inc()
		logging.Warn("rejecting %s/%s: %v", root, name, err)
		return Track{}, false
	}

	t.SampleRate = rate
	t.Channels = channels
	t.BitDepth = depth
	return t, true
}

// readWAVHeader probes the fmt chunk for sample rate, channel count and
// bit depth.
func readWAVHeader(r io.ReadSeeker) (rate, channels, depth int, err error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if d.Err() != nil {
		return 0, 0, 0, d.Err()
	}
	if d.SampleRate == 0 || d.NumChans == 0 {
		return 0, 0, 0, errInvalidWAV
	}
	return int(d.SampleRate), int(d.NumChans), int(d.BitDepth), nil
}
