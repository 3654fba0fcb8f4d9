package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sd-jukebox/internal/catalog"
	"sd-jukebox/internal/logging"
	"sd-jukebox/internal/metrics"
	"sd-jukebox/internal/playlist"
	"sd-jukebox/internal/storage"

	"github.com/faiface/beep"
)

// State is the playback state machine position.
type State string

const (
	// StateIdle means no session has started yet.
	StateIdle State = "idle"
	// StateLoading means a track is being opened and decoded.
	StateLoading State = "loading"
	// StatePlaying means the decoded stream is with the audio output.
	StatePlaying State = "playing"
	// StateStopped means the last session ended by an explicit Stop.
	StateStopped State = "stopped"
	// StateFinished means the last track drained to completion.
	StateFinished State = "finished"
	// StateFailed means the last track failed to load or decode.
	StateFailed State = "failed"
)

// Output is the audio sink capability. The production implementation
// drives the beep speaker; tests record calls. done is invoked by the sink
// when the stream drains; implementations must not hold internal locks
// while calling it beyond their own streaming lock.
type Output interface {
	Play(format beep.Format, stream beep.Streamer, done func()) error
	Stop()
	IsBusy() bool
}

// Config holds engine tuning.
type Config struct {
	// TrackGap is the pause between consecutive tracks under PlayAll.
	TrackGap time.Duration
}

// DefaultConfig matches the original player's half-second breather between
// songs.
func DefaultConfig() Config {
	return Config{TrackGap: 500 * time.Millisecond}
}

// Engine drives the playback state machine. Exactly one session is active
// at a time; a play request during an active session fails fast with
// AlreadyPlaying rather than queuing.
type Engine struct {
	mount       *storage.Mount
	internalDir string
	output      Output
	decode      DecodeFunc
	gap         time.Duration
	sleep       func(time.Duration)

	mu         sync.Mutex
	state      State
	current    *catalog.Track
	startedAt  time.Time
	stream     io.Closer
	done       chan struct{}
	doneClosed bool
}

// New creates an Engine. Internal tracks are opened directly from
// internalDir; removable tracks go through the mount's guarded read path.
func New(mount *storage.Mount, internalDir string, output Output, cfg Config) *Engine {
	return &Engine{
		mount:       mount,
		internalDir: internalDir,
		output:      output,
		decode:      Decode,
		gap:         cfg.TrackGap,
		sleep:       time.Sleep,
		state:       StateIdle,
	}
}

// SessionStatus is a snapshot of the playback session.
type SessionStatus struct {
	State     State          `json:"state"`
	Track     *catalog.Track `json:"track,omitempty"`
	StartedAt time.Time      `json:"startedAt,omitempty"`
}

// Status returns the current session snapshot. Pure read, no side effects.
func (e *Engine) Status() SessionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := SessionStatus{State: e.state}
	if e.current != nil {
		t := *e.current
		st.Track = &t
		st.StartedAt = e.startedAt
	}
	return st
}

// IsPlaying reports whether a session is in flight.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StatePlaying || e.state == StateLoading
}

// PlayTrack opens, decodes and hands one track to the output. Valid from
// Idle or any terminal state; a call during an active session returns
// AlreadyPlaying without touching it. Failures are typed, terminal for
// this track only, and never retried here: retry policy belongs to the
// caller.
//
// The call returns once the stream is with the output; it does not wait
// for the track to finish.
func (e *Engine) PlayTrack(t catalog.Track) error {
	e.mu.Lock()
	if e.state == StateLoading || e.state == StatePlaying {
		e.mu.Unlock()
		return &Error{Reason: ReasonAlreadyPlaying, Track: t.Path}
	}
	e.state = StateLoading
	tt := t
	e.current = &tt
	e.startedAt = time.Now()
	e.done = make(chan struct{})
	e.doneClosed = false
	e.mu.Unlock()

	f, err := e.open(t)
	if err != nil {
		return e.fail(classifyOpen(err), t, err)
	}

	if _, supported := decodableFormats[t.Format]; !supported {
		closeQuiet(f, t)
		return e.fail(ReasonUnsupportedFormat, t, fmt.Errorf("format %q", t.Format))
	}

	stream, format, err := e.decode(f, t.Format)
	if err != nil {
		closeQuiet(f, t)
		return e.fail(ReasonDecodeFault, t, err)
	}

	e.mu.Lock()
	if e.state != StateLoading {
		// Stop arrived while loading; the session is already closed out.
		e.mu.Unlock()
		closeQuiet(stream, t)
		return nil
	}
	e.stream = stream
	e.state = StatePlaying
	e.mu.Unlock()

	if err := e.output.Play(format, stream, e.finish); err != nil {
		closeQuiet(stream, t)
		return e.fail(ReasonDecodeFault, t, err)
	}

	logging.Info("playing %s [%s, %s]", t.Name(), t.Root, t.Format)
	return nil
}

// PlayAll drives the cursor, playing each track to completion. Per-track
// failures are logged and skipped rather than aborting the run, with one
// exception: a storage fault on a removable track earns a single remount
// and one retry of the same track before it too is skipped. Decode and
// format faults never trigger a remount. Stop ends the run.
func (e *Engine) PlayAll(cur *playlist.Cursor) {
	if cur.Len() == 0 {
		logging.Info("playlist empty, nothing to play")
		return
	}

	played := 0
	for {
		t, ok := cur.Next()
		if !ok {
			break
		}

		stopped, err := e.playAndWait(t)
		if stopped {
			logging.Info("playback stopped after %d track(s)", played)
			return
		}
		if err != nil {
			if ReasonOf(err) == ReasonAlreadyPlaying {
				logging.Warn("playAll aborted: %v", err)
				return
			}
			if isStorageFault(t, err) {
				stopped, err = e.retryAfterRemount(t, err)
				if stopped {
					logging.Info("playback stopped after %d track(s)", played)
					return
				}
			}
			if err != nil {
				logging.Warn("skipping %s: %v", t.Name(), err)
				continue
			}
		}

		played++
		e.sleep(e.gap)
	}
	logging.Info("playlist finished, %d track(s) played", played)
}

// Stop halts the output and closes out the session. Idempotent: safe to
// call in any state, and the output is quiesced even when the engine
// already considers itself idle.
func (e *Engine) Stop() {
	e.mu.Lock()
	active := e.state == StatePlaying || e.state == StateLoading
	stream := e.stream
	e.stream = nil
	if active {
		e.state = StateStopped
		e.closeDoneLocked()
	}
	e.mu.Unlock()

	e.output.Stop()
	if stream != nil {
		if err := stream.Close(); err != nil {
			logging.Debug("stop: closing stream: %v", err)
		}
	}
	if active {
		metrics.PlaybackTracksTotal.WithLabelValues("stopped").Inc()
		logging.Info("playback stopped")
	}
}

// playAndWait plays one track and blocks until it finishes, fails, or a
// Stop lands. Reports whether the session was stopped.
func (e *Engine) playAndWait(t catalog.Track) (stopped bool, err error) {
	if err := e.PlayTrack(t); err != nil {
		return false, err
	}

	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}

	e.mu.Lock()
	stopped = e.state == StateStopped
	finished := e.state == StateFinished
	e.mu.Unlock()

	if finished {
		// Redundant by now, but a terminal transition always quiesces the
		// output so it can never be left playing behind the engine's back.
		e.output.Stop()
	}
	return stopped, nil
}

// retryAfterRemount implements the storage-fault remediation order: one
// explicit remount, then one retry of the same track.
func (e *Engine) retryAfterRemount(t catalog.Track, cause error) (stopped bool, err error) {
	logging.Warn("storage fault on %s, remounting once: %v", t.Name(), cause)
	metrics.PlaybackRemountsTotal.Inc()

	if merr := e.mount.Mount(); merr != nil {
		return false, cause
	}
	var se *storage.Error
	if errors.As(cause, &se) && se.RetryAfter > 0 {
		e.sleep(se.RetryAfter)
	}
	return e.playAndWait(t)
}

// finish is handed to the output as the stream-drained callback.
func (e *Engine) finish() {
	e.mu.Lock()
	if e.state == StatePlaying {
		e.state = StateFinished
		if e.stream != nil {
			if err := e.stream.Close(); err != nil {
				logging.Debug("finish: closing stream: %v", err)
			}
			e.stream = nil
		}
		metrics.PlaybackTracksTotal.WithLabelValues("finished").Inc()
	}
	e.closeDoneLocked()
	e.mu.Unlock()
}

func (e *Engine) fail(reason FailureReason, t catalog.Track, cause error) error {
	perr := &Error{Reason: reason, Track: t.Path, Err: cause}

	e.mu.Lock()
	e.state = StateFailed
	e.stream = nil
	e.closeDoneLocked()
	e.mu.Unlock()

	e.output.Stop()
	metrics.PlaybackTracksTotal.WithLabelValues("failed").Inc()
	metrics.PlaybackFailuresTotal.WithLabelValues(string(reason)).Inc()
	logging.Error("%v", perr)
	return perr
}

func (e *Engine) open(t catalog.Track) (io.ReadCloser, error) {
	if t.Root == catalog.RootInternal {
		return os.Open(filepath.Join(e.internalDir, t.Path))
	}

	var f storage.File
	err := e.mount.GuardedRead(func(h storage.Handle) error {
		var oerr error
		f, oerr = h.OpenFile(t.Path)
		return oerr
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (e *Engine) closeDoneLocked() {
	if e.done != nil && !e.doneClosed {
		close(e.done)
		e.doneClosed = true
	}
}

var decodableFormats = map[catalog.Format]bool{
	catalog.FormatWAV: true,
	catalog.FormatMP3: true,
}

func classifyOpen(err error) FailureReason {
	if errors.Is(err, fs.ErrNotExist) {
		return ReasonNotFound
	}
	return ReasonIOFault
}

// isStorageFault reports whether the failure came out of the removable
// storage path and therefore deserves the remount remediation.
func isStorageFault(t catalog.Track, err error) bool {
	return t.Root == catalog.RootRemovable && ReasonOf(err) == ReasonIOFault
}

func closeQuiet(c io.Closer, t catalog.Track) {
	if err := c.Close(); err != nil {
		logging.Debug("closing %s: %v", t.Name(), err)
	}
}
