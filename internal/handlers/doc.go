// Package handlers implements the HTTP control surface: the thin command
// layer over the playlist/playback core. It exposes the same operations
// the original interactive player offered (list, play by name or number,
// play-all with shuffle/repeat, the low-quality subset, stop, status)
// plus rescan, remount and health endpoints.
package handlers
