// Package audio implements the playback engine's Output capability on top
// of the beep speaker.
package audio
