package engine

import (
	"fmt"
	"io"

	"sd-jukebox/internal/catalog"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// DecodeFunc turns an open file into a decoded sample stream. The default
// selects a beep decoder by track format; tests substitute fakes.
type DecodeFunc func(rc io.ReadCloser, format catalog.Format) (beep.StreamSeekCloser, beep.Format, error)

// Decode is the production decoder selection.
func Decode(rc io.ReadCloser, format catalog.Format) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case catalog.FormatWAV:
		return wav.Decode(rc)
	case catalog.FormatMP3:
		return mp3.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("no decoder for format %q", format)
	}
}
