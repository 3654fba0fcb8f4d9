// Package playlist provides the playback traversal policy over a catalog:
// sequential, shuffled, and repeating cursors that hand out the next track
// on demand.
package playlist
