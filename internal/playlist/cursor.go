package playlist

import (
	"math/rand"
	"time"

	"sd-jukebox/internal/catalog"
)

// Cursor is a traversal policy over a catalog snapshot: sequential or
// shuffled, optionally repeating. It holds its own copy of the track list,
// so a catalog rebuild invalidates nothing; callers build a fresh cursor
// against the new catalog instead.
type Cursor struct {
	tracks  []catalog.Track
	order   []int
	pos     int
	shuffle bool
	repeat  bool
	rng     *rand.Rand
}

// Build creates a cursor over the catalog. With shuffle the order is a
// fresh uniform permutation; otherwise it is catalog order. An empty
// catalog is a normal state: Next simply reports exhaustion.
func Build(c *catalog.Catalog, shuffle, repeat bool) *Cursor {
	cur := &Cursor{
		tracks:  append([]catalog.Track(nil), c.Tracks...),
		pos:     -1,
		shuffle: shuffle,
		repeat:  repeat,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	cur.order = cur.makeOrder()
	return cur
}

func (p *Cursor) makeOrder() []int {
	if p.shuffle {
		return p.rng.Perm(len(p.tracks))
	}
	order := make([]int, len(p.tracks))
	for i := range order {
		order[i] = i
	}
	return order
}

// Next advances the cursor and returns the next track. At the end of the
// order: with repeat it wraps to the start, reshuffling first when shuffle
// is on so a wrapped pass does not replay the identical sequence; without
// repeat it reports exhaustion, and keeps doing so on further calls.
func (p *Cursor) Next() (catalog.Track, bool) {
	if len(p.order) == 0 {
		return catalog.Track{}, false
	}

	if p.pos+1 >= len(p.order) {
		if !p.repeat {
			p.pos = len(p.order)
			return catalog.Track{}, false
		}
		if p.shuffle {
			p.order = p.rng.Perm(len(p.tracks))
		}
		p.pos = 0
	} else {
		p.pos++
	}

	return p.tracks[p.order[p.pos]], true
}

// Current returns the track Next last yielded without advancing. It
// reports false before the first Next and after exhaustion.
func (p *Cursor) Current() (catalog.Track, bool) {
	if p.pos < 0 || p.pos >= len(p.order) {
		return catalog.Track{}, false
	}
	return p.tracks[p.order[p.pos]], true
}

// Len returns the number of tracks in one pass of the cursor.
func (p *Cursor) Len() int {
	return len(p.tracks)
}
