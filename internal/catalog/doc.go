// Package catalog builds and filters the track catalog spanning the
// onboard flash root and the removable SD card root.
//
// A scan produces an ordered, de-duplicated list of track descriptors:
// internal root first, then removable, entries within a root in
// directory-listing order. WAV files are admitted only when their header
// parses (sample rate, channels, bit depth); MP3 files are admitted by
// extension since the decoder reports parameters at play time. The catalog
// is always rebuilt wholesale; a stale or corrupted removable listing is
// discarded, never merged.
//
// When the removable root cannot be enumerated the scan degrades to an
// internal-only catalog with the Partial flag set, which callers report as
// a distinguishable status rather than "no files anywhere".
package catalog
