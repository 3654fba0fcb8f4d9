package catalog

import (
	"path"
	"time"
)

// StorageRoot identifies which physical filesystem a track lives on.
type StorageRoot string

const (
	// RootInternal is the onboard flash filesystem.
	RootInternal StorageRoot = "internal"
	// RootRemovable is the SD card behind the storage mount.
	RootRemovable StorageRoot = "removable"
)

// Format is the audio container format of a track.
type Format string

const (
	// FormatWAV is uncompressed PCM audio.
	FormatWAV Format = "wav"
	// FormatMP3 is MPEG layer 3 audio.
	FormatMP3 Format = "mp3"
)

// Track describes one playable file. It is immutable once constructed by a
// scan; identity is (Root, Path).
//
// SampleRate, Channels and BitDepth are filled from the WAV header at scan
// time. MP3 files report their parameters only when decoded, so the fields
// stay zero for them.
type Track struct {
	Path       string      `json:"path"`
	Root       StorageRoot `json:"root"`
	Format     Format      `json:"format"`
	SampleRate int         `json:"sampleRate,omitempty"`
	Channels   int         `json:"channels,omitempty"`
	BitDepth   int         `json:"bitDepth,omitempty"`
}

// Name returns the bare filename of the track.
func (t Track) Name() string {
	return path.Base(t.Path)
}

// Same reports whether two descriptors refer to the same file.
func (t Track) Same(o Track) bool {
	return t.Root == o.Root && t.Path == o.Path
}

// Catalog is the ordered set of tracks discovered by one scan: internal
// root first, then removable, entries within a root in directory-listing
// order. It is rebuilt wholesale on every scan and never patched, because
// a corrupted removable listing must be discarded, not merged.
type Catalog struct {
	Tracks []Track `json:"tracks"`
	// Partial is set when the removable root could not be enumerated and
	// the catalog holds internal entries only.
	Partial   bool      `json:"partial"`
	ScannedAt time.Time `json:"scannedAt"`
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.Tracks)
}

// At returns the track at index i (zero-based).
func (c *Catalog) At(i int) (Track, bool) {
	if i < 0 || i >= len(c.Tracks) {
		return Track{}, false
	}
	return c.Tracks[i], true
}

// ByName finds a track by bare filename, internal root first, matching the
// lookup order of the original player.
func (c *Catalog) ByName(name string) (Track, bool) {
	for _, root := range []StorageRoot{RootInternal, RootRemovable} {
		for _, t := range c.Tracks {
			if t.Root == root && t.Name() == name {
				return t, true
			}
		}
	}
	return Track{}, false
}

// Quality thresholds for the profile known to be reliable on constrained
// output hardware.
const (
	LowQualityMaxSampleRate = 22050
	LowQualityMaxChannels   = 1
)

// FilterQuality returns a new catalog holding only tracks at or below the
// given sample-rate and channel thresholds. MP3 tracks are excluded: their
// parameters are unknown until decode, so they cannot be verified against
// the threshold. The source catalog is not modified.
func FilterQuality(c *Catalog, maxSampleRate, maxChannels int) *Catalog {
	out := &Catalog{Partial: c.Partial, ScannedAt: c.ScannedAt}
	for _, t := range c.Tracks {
		if t.SampleRate == 0 || t.Channels == 0 {
			continue
		}
		if t.SampleRate <= maxSampleRate && t.Channels <= maxChannels {
			out.Tracks = append(out.Tracks, t)
		}
	}
	return out
}

// LowQuality is FilterQuality with the default thresholds (mono, ≤22050 Hz).
func LowQuality(c *Catalog) *Catalog {
	return FilterQuality(c, LowQualityMaxSampleRate, LowQualityMaxChannels)
}
