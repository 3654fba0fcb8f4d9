package storage

import (
	"errors"
	"io/fs"
	"sync"
	"time"

	"sd-jukebox/internal/logging"
	"sd-jukebox/internal/metrics"
)

// State is the lifecycle state of the removable storage mount.
type State int

const (
	// StateUnmounted means no mount has been attempted, or the device was
	// unmounted cleanly.
	StateUnmounted State = iota
	// StateMounting means a mount attempt is in progress.
	StateMounting
	// StateMounted means the device is mounted and, once the settling window
	// has passed, readable.
	StateMounted
	// StateFaulted means the device failed and reads are refused until an
	// explicit Mount call succeeds.
	StateFaulted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounting:
		return "mounting"
	case StateMounted:
		return "mounted"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Config holds the mount tuning intervals. The defaults were calibrated
// against SD-over-SPI hardware that corrupts under rapid successive reads
// and reports mount success before it can actually serve them; see
// DefaultConfig. All values are overridable per target device.
type Config struct {
	// SettleDelay is the minimum delay after a successful mount before any
	// read is admitted.
	SettleDelay time.Duration
	// ReadInterval is the minimum spacing between consecutive guarded reads.
	ReadInterval time.Duration
	// MaxAttempts bounds the mount retry loop.
	MaxAttempts int
	// InitialBackoff is the delay after the first failed attempt; it doubles
	// per attempt up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns the intervals known to keep the SPI-attached card
// stable: a 200ms settling window and 500ms between operations.
func DefaultConfig() Config {
	return Config{
		SettleDelay:    200 * time.Millisecond,
		ReadInterval:   500 * time.Millisecond,
		MaxAttempts:    3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// Status is a point-in-time snapshot of the mount for reporting.
type Status struct {
	State     State     `json:"state"`
	MountedAt time.Time `json:"mountedAt,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	Fault     string    `json:"fault,omitempty"`
}

// MarshalJSON renders the state by name rather than ordinal.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Mount owns the removable storage lifecycle: attempt, retry with backoff,
// settling delay, and the inter-read rate limiter. There is exactly one
// Mount per device; components that touch removable storage receive it by
// injection and never bypass GuardedRead.
type Mount struct {
	driver Driver
	config Config

	mu          sync.Mutex
	state       State
	handle      Handle
	mountedAt   time.Time
	lastRead    time.Time
	attempt     int
	faultReason error

	// clock hooks, replaced in tests
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Mount around the given driver. No mount attempt is made;
// call Mount or EnsureMounted first.
func New(driver Driver, config Config) *Mount {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Mount{
		driver: driver,
		config: config,
		state:  StateUnmounted,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Configured returns the tuning intervals the mount was built with.
func (m *Mount) Configured() Config {
	return m.config
}

// Mount brings the device from Unmounted or Faulted into Mounted, retrying
// up to the configured attempt budget with exponential backoff. A no-op if
// already mounted. After the low-level mount succeeds the call blocks for
// the settling delay, so a nil return means the device is ready to serve
// reads (subject to the rate limiter).
func (m *Mount) Mount() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mountLocked()
}

func (m *Mount) mountLocked() error {
	if m.state == StateMounted {
		return nil
	}

	backoff := m.config.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= m.config.MaxAttempts; attempt++ {
		m.attempt = attempt
		m.setStateLocked(StateMounting)

		handle, err := m.driver.Mount()
		if err == nil {
			m.handle = handle
			m.mountedAt = m.now()
			m.lastRead = time.Time{}
			m.faultReason = nil
			m.setStateLocked(StateMounted)
			metrics.MountAttemptsTotal.WithLabelValues("success").Inc()
			logging.Info("removable storage mounted (attempt %d), settling for %v", attempt, m.config.SettleDelay)
			// Absorbs the driver race where the card reports success before
			// it can serve reads.
			m.sleep(m.config.SettleDelay)
			return nil
		}

		lastErr = err
		metrics.MountAttemptsTotal.WithLabelValues("error").Inc()
		logging.Warn("mount attempt %d/%d failed: %v", attempt, m.config.MaxAttempts, err)

		if attempt < m.config.MaxAttempts {
			m.sleep(backoff)
			backoff *= 2
			if backoff > m.config.MaxBackoff {
				backoff = m.config.MaxBackoff
			}
		}
	}

	ferr := &Error{Kind: KindRetriesExhausted, Err: lastErr}
	m.faultLocked(ferr)
	return ferr
}

// EnsureMounted is the idempotent entry point for callers about to read:
// a no-op when mounted, otherwise a full Mount.
func (m *Mount) EnsureMounted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateMounted {
		return nil
	}
	return m.mountLocked()
}

// GuardedRead runs op against the mounted filesystem, enforcing the
// settling window and the minimum inter-read interval. Reads requested too
// soon are rejected with a RateLimited error rather than queued, so the
// caller decides whether to wait or skip. An op failure faults the mount;
// no further reads are admitted until an explicit Mount call.
//
// The mutex is held for the duration of op: guarded operations are strictly
// serialized, which is the property protecting the hardware path.
func (m *Mount) GuardedRead(op func(Handle) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateMounted {
		metrics.StorageReadsTotal.WithLabelValues("error").Inc()
		return &Error{Kind: KindDeviceAbsent, Err: m.faultReason}
	}

	now := m.now()
	if since := now.Sub(m.mountedAt); since < m.config.SettleDelay {
		metrics.StorageReadsTotal.WithLabelValues("rate_limited").Inc()
		return &Error{Kind: KindRateLimited, RetryAfter: m.config.SettleDelay - since}
	}
	if !m.lastRead.IsZero() {
		if since := now.Sub(m.lastRead); since < m.config.ReadInterval {
			metrics.StorageReadsTotal.WithLabelValues("rate_limited").Inc()
			return &Error{Kind: KindRateLimited, RetryAfter: m.config.ReadInterval - since}
		}
	}
	m.lastRead = now

	if err := op(m.handle); err != nil {
		metrics.StorageReadsTotal.WithLabelValues("error").Inc()
		// A missing path is the caller's problem; only device-level I/O
		// failures fault the mount.
		if !errors.Is(err, fs.ErrNotExist) {
			m.faultLocked(err)
		}
		return err
	}

	metrics.StorageReadsTotal.WithLabelValues("success").Inc()
	return nil
}

// Unmount releases the device and resets to Unmounted. Safe to call in any
// state.
func (m *Mount) Unmount() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.handle != nil {
		err = m.handle.Unmount()
		m.handle = nil
	}
	m.lastRead = time.Time{}
	m.faultReason = nil
	m.setStateLocked(StateUnmounted)
	if err != nil {
		logging.Warn("unmount: %v", err)
		return err
	}
	logging.Info("removable storage unmounted")
	return nil
}

// Status returns a snapshot for health and status reporting.
func (m *Mount) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{State: m.state, Attempt: m.attempt}
	if m.state == StateMounted {
		st.MountedAt = m.mountedAt
	}
	if m.faultReason != nil {
		st.Fault = m.faultReason.Error()
	}
	return st
}

func (m *Mount) faultLocked(reason error) {
	m.faultReason = reason
	m.handle = nil
	m.setStateLocked(StateFaulted)
	logging.Error("removable storage faulted: %v", reason)
}

func (m *Mount) setStateLocked(s State) {
	m.state = s
	metrics.MountStateGauge.Set(float64(s))
}
