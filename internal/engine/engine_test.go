package engine

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sd-jukebox/internal/catalog"
	"sd-jukebox/internal/playlist"
	"sd-jukebox/internal/storage"

	"github.com/faiface/beep"
)

// nopStream is a drained beep stream for decode fakes.
type nopStream struct{}

func (nopStream) Stream(_ [][2]float64) (int, bool) { return 0, false }
func (nopStream) Err() error                        { return nil }
func (nopStream) Len() int                          { return 0 }
func (nopStream) Position() int                     { return 0 }
func (nopStream) Seek(int) error                    { return nil }
func (nopStream) Close() error                      { return nil }

// fakeOutput records calls. By default Play reports the stream drained
// immediately; with hold set it parks the callback for the test to release.
type fakeOutput struct {
	mu    sync.Mutex
	plays int
	stops int
	hold  bool
	done  func()
}

func (o *fakeOutput) Play(_ beep.Format, _ beep.Streamer, done func()) error {
	o.mu.Lock()
	o.plays++
	hold := o.hold
	if hold {
		o.done = done
	}
	o.mu.Unlock()

	if !hold {
		done()
	}
	return nil
}

func (o *fakeOutput) Stop() {
	o.mu.Lock()
	o.stops++
	o.mu.Unlock()
}

func (o *fakeOutput) IsBusy() bool { return false }

func (o *fakeOutput) playCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.plays
}

func (o *fakeOutput) release() {
	o.mu.Lock()
	done := o.done
	o.done = nil
	o.mu.Unlock()
	if done != nil {
		done()
	}
}

// fakeDecode rejects any file whose content starts with "bad" and accepts
// everything else without touching a real decoder.
func fakeDecode(rc io.ReadCloser, _ catalog.Format) (beep.StreamSeekCloser, beep.Format, error) {
	head := make([]byte, 3)
	n, _ := io.ReadFull(rc, head)
	if strings.HasPrefix(string(head[:n]), "bad") {
		return nil, beep.Format{}, errors.New("malformed stream")
	}
	return nopStream{}, beep.Format{SampleRate: 22050, NumChannels: 1}, nil
}

// scripted storage fakes for the remount path.

type scriptedFile struct {
	*bytes.Reader
}

func (scriptedFile) Close() error { return nil }

type scriptedHandle struct {
	mu        sync.Mutex
	openFails int
	opens     int
}

func (h *scriptedHandle) ListDir(string) ([]storage.Entry, error) { return nil, nil }

func (h *scriptedHandle) OpenFile(string) (storage.File, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opens++
	if h.opens <= h.openFails {
		return nil, errors.New("sd read error")
	}
	return scriptedFile{bytes.NewReader([]byte("ok audio"))}, nil
}

func (h *scriptedHandle) Unmount() error { return nil }

type scriptedDriver struct {
	mu     sync.Mutex
	mounts int
	handle *scriptedHandle
}

func (d *scriptedDriver) Mount() (storage.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounts++
	return d.handle, nil
}

func (d *scriptedDriver) mountCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mounts
}

func instantMount(driver storage.Driver) *storage.Mount {
	return storage.New(driver, storage.Config{
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	})
}

// newTestEngine builds an engine over a temp internal dir with the fake
// decoder, no inter-track gap, and no real sleeping.
func newTestEngine(t *testing.T, output Output) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	driver := &scriptedDriver{handle: &scriptedHandle{}}
	mount := instantMount(driver)
	if err := mount.Mount(); err != nil {
		t.Fatal(err)
	}

	e := New(mount, dir, output, Config{TrackGap: 0})
	e.decode = fakeDecode
	e.sleep = func(time.Duration) {}
	return e, dir
}

func internalTrack(t *testing.T, dir, name, content string) catalog.Track {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return catalog.Track{Path: name, Root: catalog.RootInternal, Format: catalog.FormatWAV}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func TestPlayTrackFinishes(t *testing.T) {
	output := &fakeOutput{}
	e, dir := newTestEngine(t, output)
	tr := internalTrack(t, dir, "song.wav", "ok audio")

	if err := e.PlayTrack(tr); err != nil {
		t.Fatalf("PlayTrack() = %v", err)
	}

	st := e.Status()
	if st.State != StateFinished {
		t.Errorf("state = %s, want finished", st.State)
	}
	if st.Track == nil || st.Track.Path != "song.wav" {
		t.Errorf("track = %+v, want song.wav", st.Track)
	}
	if output.playCount() != 1 {
		t.Errorf("output plays = %d, want 1", output.playCount())
	}
}

func TestPlayTrackNotFound(t *testing.T) {
	e, _ := newTestEngine(t, &fakeOutput{})

	err := e.PlayTrack(catalog.Track{Path: "ghost.wav", Root: catalog.RootInternal, Format: catalog.FormatWAV})
	if ReasonOf(err) != ReasonNotFound {
		t.Fatalf("reason = %q, want not_found", ReasonOf(err))
	}
	if got := e.Status().State; got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

func TestPlayTrackDecodeFault(t *testing.T) {
	e, dir := newTestEngine(t, &fakeOutput{})
	tr := internalTrack(t, dir, "corrupt.wav", "bad bytes")

	err := e.PlayTrack(tr)
	if ReasonOf(err) != ReasonDecodeFault {
		t.Fatalf("reason = %q, want decode_fault", ReasonOf(err))
	}
	if got := e.Status().State; got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

func TestPlayTrackUnsupportedFormat(t *testing.T) {
	e, dir := newTestEngine(t, &fakeOutput{})
	tr := internalTrack(t, dir, "clip.ogg", "ogg payload")
	tr.Format = catalog.Format("ogg")

	err := e.PlayTrack(tr)
	if ReasonOf(err) != ReasonUnsupportedFormat {
		t.Fatalf("reason = %q, want unsupported_format", ReasonOf(err))
	}
}

func TestPlayTrackRejectsConcurrentSession(t *testing.T) {
	output := &fakeOutput{hold: true}
	e, dir := newTestEngine(t, output)
	first := internalTrack(t, dir, "first.wav", "ok")
	second := internalTrack(t, dir, "second.wav", "ok")

	if err := e.PlayTrack(first); err != nil {
		t.Fatalf("PlayTrack(first) = %v", err)
	}
	if !e.IsPlaying() {
		t.Fatal("IsPlaying() = false with held output")
	}

	err := e.PlayTrack(second)
	if ReasonOf(err) != ReasonAlreadyPlaying {
		t.Fatalf("reason = %q, want already_playing", ReasonOf(err))
	}

	// The active session is untouched by the rejected request.
	st := e.Status()
	if st.State != StatePlaying || st.Track == nil || st.Track.Path != "first.wav" {
		t.Errorf("session = %+v, want first.wav still playing", st)
	}

	e.Stop()
	if got := e.Status().State; got != StateStopped {
		t.Errorf("state after stop = %s, want stopped", got)
	}
}

func TestStopIdempotent(t *testing.T) {
	output := &fakeOutput{}
	e, _ := newTestEngine(t, output)

	e.Stop()
	e.Stop()

	if got := e.Status().State; got != StateIdle {
		t.Errorf("state = %s, want idle (no session to stop)", got)
	}
	// The output is quiesced on every call regardless of engine state.
	if output.stops != 2 {
		t.Errorf("output stops = %d, want 2", output.stops)
	}
}

func TestPlayAllSkipsFailures(t *testing.T) {
	output := &fakeOutput{}
	e, dir := newTestEngine(t, output)

	cat := &catalog.Catalog{Tracks: []catalog.Track{
		internalTrack(t, dir, "one.wav", "ok"),
		internalTrack(t, dir, "two.wav", "bad bytes"),
		internalTrack(t, dir, "three.wav", "ok"),
	}}

	e.PlayAll(playlist.Build(cat, false, false))

	if output.playCount() != 2 {
		t.Errorf("output plays = %d, want 2 (decode failure skipped)", output.playCount())
	}
}

func TestPlayAllEmpty(t *testing.T) {
	output := &fakeOutput{}
	e, _ := newTestEngine(t, output)

	e.PlayAll(playlist.Build(&catalog.Catalog{}, false, false))

	if output.playCount() != 0 {
		t.Errorf("output plays = %d, want 0", output.playCount())
	}
}

func TestPlayAllRemountsOnceOnStorageFault(t *testing.T) {
	handle := &scriptedHandle{openFails: 1}
	driver := &scriptedDriver{handle: handle}
	mount := instantMount(driver)
	if err := mount.Mount(); err != nil {
		t.Fatal(err)
	}

	output := &fakeOutput{}
	e := New(mount, t.TempDir(), output, Config{TrackGap: 0})
	e.decode = fakeDecode
	e.sleep = func(time.Duration) {}

	cat := &catalog.Catalog{Tracks: []catalog.Track{
		{Path: "sd-song.wav", Root: catalog.RootRemovable, Format: catalog.FormatWAV},
	}}
	e.PlayAll(playlist.Build(cat, false, false))

	if driver.mountCount() != 2 {
		t.Errorf("driver mounts = %d, want 2 (boot mount plus one remediation remount)", driver.mountCount())
	}
	if output.playCount() != 1 {
		t.Errorf("output plays = %d, want 1 (retry after remount succeeded)", output.playCount())
	}
}

func TestPlayAllSkipsAfterSecondStorageFault(t *testing.T) {
	handle := &scriptedHandle{openFails: 100} // never recovers
	driver := &scriptedDriver{handle: handle}
	mount := instantMount(driver)
	if err := mount.Mount(); err != nil {
		t.Fatal(err)
	}

	output := &fakeOutput{}
	e := New(mount, t.TempDir(), output, Config{TrackGap: 0})
	e.decode = fakeDecode
	e.sleep = func(time.Duration) {}

	cat := &catalog.Catalog{Tracks: []catalog.Track{
		{Path: "sd-song.wav", Root: catalog.RootRemovable, Format: catalog.FormatWAV},
	}}
	e.PlayAll(playlist.Build(cat, false, false))

	if driver.mountCount() != 2 {
		t.Errorf("driver mounts = %d, want 2 (exactly one remount, no loop)", driver.mountCount())
	}
	if output.playCount() != 0 {
		t.Errorf("output plays = %d, want 0", output.playCount())
	}
}

func TestStopEndsPlayAll(t *testing.T) {
	output := &fakeOutput{hold: true}
	e, dir := newTestEngine(t, output)

	cat := &catalog.Catalog{Tracks: []catalog.Track{
		internalTrack(t, dir, "a.wav", "ok"),
		internalTrack(t, dir, "b.wav", "ok"),
		internalTrack(t, dir, "c.wav", "ok"),
	}}

	finished := make(chan struct{})
	go func() {
		e.PlayAll(playlist.Build(cat, false, false))
		close(finished)
	}()

	waitFor(t, e.IsPlaying)
	e.Stop()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("PlayAll did not return after Stop")
	}

	if output.playCount() != 1 {
		t.Errorf("output plays = %d, want 1 (run ended at the stopped track)", output.playCount())
	}
}

func TestPlayTrackRestartsAfterTerminalStates(t *testing.T) {
	output := &fakeOutput{}
	e, dir := newTestEngine(t, output)
	good := internalTrack(t, dir, "good.wav", "ok")
	bad := internalTrack(t, dir, "bad.wav", "bad bytes")

	if err := e.PlayTrack(good); err != nil {
		t.Fatalf("first play: %v", err)
	}
	if err := e.PlayTrack(bad); ReasonOf(err) != ReasonDecodeFault {
		t.Fatalf("second play reason = %q, want decode_fault", ReasonOf(err))
	}
	// Failed is terminal for that track only; the engine accepts new work.
	if err := e.PlayTrack(good); err != nil {
		t.Fatalf("third play: %v", err)
	}
	if got := e.Status().State; got != StateFinished {
		t.Errorf("state = %s, want finished", got)
	}
}
