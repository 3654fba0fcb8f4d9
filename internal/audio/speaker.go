package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"sd-jukebox/internal/logging"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// bufferLen is the speaker buffer size; 100ms trades latency for underrun
// resistance on small boards.
const bufferLen = 100 * time.Millisecond

// Speaker is the production audio output: decoded streams are handed to
// the beep speaker, and completion is signalled through the done callback
// appended after the stream.
type Speaker struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
	active      int32
}

// NewSpeaker creates an uninitialized speaker. The underlying device is
// opened lazily on the first Play, once the stream's sample rate is known.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Play hands the stream to the speaker. The device is (re)initialized when
// the sample rate changes between tracks; done fires after the stream
// drains.
func (s *Speaker) Play(format beep.Format, stream beep.Streamer, done func()) error {
	s.mu.Lock()
	if !s.initialized || s.sampleRate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(bufferLen)); err != nil {
			s.mu.Unlock()
			return err
		}
		s.initialized = true
		s.sampleRate = format.SampleRate
		logging.Debug("speaker initialized at %d Hz", format.SampleRate)
	}
	s.mu.Unlock()

	atomic.AddInt32(&s.active, 1)
	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		atomic.AddInt32(&s.active, -1)
		done()
	})))
	return nil
}

// Stop drops everything queued on the speaker. Safe to call before the
// first Play.
func (s *Speaker) Stop() {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()

	if initialized {
		speaker.Clear()
	}
	atomic.StoreInt32(&s.active, 0)
}

// IsBusy reports whether a stream is currently with the speaker.
func (s *Speaker) IsBusy() bool {
	return atomic.LoadInt32(&s.active) > 0
}
