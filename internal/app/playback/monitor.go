package playback

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/soramane/tunebox/internal/domain/playlist"
)

const (
	// DefaultMonitorInterval is how often the monitor polls the player
	// for end-of-track.
	DefaultMonitorInterval = 100 * time.Millisecond

	// MinMonitorInterval and MaxMonitorInterval bound SetInterval.
	MinMonitorInterval = 10 * time.Millisecond
	MaxMonitorInterval = time.Second

	// sleepSlice is the granularity at which the poll sleep checks for
	// cancellation.
	sleepSlice = 10 * time.Millisecond

	// stopJoinTimeout bounds how long Stop waits for the goroutine, so
	// an unresponsive backend cannot block the caller indefinitely.
	stopJoinTimeout = time.Second
)

// Monitor bridges the player's passive state to active queue
// progression: it polls for end-of-track from its own goroutine and
// performs the entire transition to the next track in-goroutine.
//
// Doing load+play for the next track synchronously within one poll
// tick (instead of handing it to another goroutine) is what keeps a
// user command racing the transition from leaving the player loaded
// but not playing.
type Monitor struct {
	player   Player
	playlist *playlist.Playlist
	loop     *LoopController
	events   Events

	mu       sync.Mutex
	running  bool
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMonitor creates a monitor over the given components.
func NewMonitor(player Player, pl *playlist.Playlist, loop *LoopController, events Events) *Monitor {
	if events == nil {
		events = NopEvents{}
	}
	return &Monitor{
		player:   player,
		playlist: pl,
		loop:     loop,
		events:   events,
		interval: DefaultMonitorInterval,
	}
}

// Start launches the poll goroutine. Calling Start while running first
// performs a full Stop, so there is always exactly one live loop.
func (m *Monitor) Start() {
	m.Stop()

	m.mu.Lock()
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	go m.run(stopCh, doneCh)
	zlog.Debug().Msgf("monitor: started: interval=%v", m.Interval())
}

// Stop signals the poll goroutine and waits for it with a bounded
// timeout. Safe to call when not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	doneCh := m.doneCh
	m.mu.Unlock()

	select {
	case <-doneCh:
	case <-time.After(stopJoinTimeout):
		zlog.Warn().Msg("monitor: goroutine did not stop within timeout")
	}
	zlog.Debug().Msg("monitor: stopped")
}

// IsRunning reports whether the poll loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// GoroutineAlive reports whether the poll goroutine has not yet
// exited. It can lag IsRunning briefly during shutdown.
func (m *Monitor) GoroutineAlive() bool {
	m.mu.Lock()
	doneCh := m.doneCh
	m.mu.Unlock()

	if doneCh == nil {
		return false
	}
	select {
	case <-doneCh:
		return false
	default:
		return true
	}
}

// Interval returns the poll interval.
func (m *Monitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// SetInterval tunes the poll interval within
// [MinMonitorInterval, MaxMonitorInterval]. Out-of-range values are
// rejected and the previous interval stays in effect.
func (m *Monitor) SetInterval(d time.Duration) bool {
	if d < MinMonitorInterval || d > MaxMonitorInterval {
		zlog.Warn().Msgf("monitor: rejected interval %v (allowed %v..%v)", d, MinMonitorInterval, MaxMonitorInterval)
		return false
	}

	m.mu.Lock()
	m.interval = d
	m.mu.Unlock()
	zlog.Debug().Msgf("monitor: interval set: interval=%v", d)
	return true
}

// run is the poll loop. Any panic out of the backend is logged and
// terminates the loop, never the process.
func (m *Monitor) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("monitor: loop terminated by panic: %v", r)
			m.markStopped()
		}
	}()

	zlog.Debug().Msg("monitor: loop started")

	for {
		if stopped(stopCh) {
			return
		}

		if m.player.State() == StatePlaying && m.player.TrackFinished() {
			if !m.handleTrackFinished() {
				m.markStopped()
				return
			}
		}

		// Sleep in small slices so a stop request is observed promptly.
		deadline := time.Now().Add(m.Interval())
		for time.Now().Before(deadline) {
			if stopped(stopCh) {
				return
			}
			time.Sleep(sleepSlice)
		}
	}
}

// handleTrackFinished performs the whole end-of-track transition in
// the monitor goroutine. Returns false when the loop should terminate
// (queue exhausted or the next track failed to start).
func (m *Monitor) handleTrackFinished() bool {
	finished := m.playlist.CurrentTrack()
	finishedIndex := m.playlist.CurrentIndex()
	if finished != nil {
		m.events.OnTrackFinished(finished, finishedIndex)
	}

	nextIndex, ok := m.nextIndex()
	if !ok {
		zlog.Info().Msg("monitor: playback complete")
		m.stopPlayback()
		return false
	}

	next := m.playlist.Track(nextIndex)
	if next == nil {
		zlog.Error().Msgf("monitor: no track at index %d", nextIndex)
		m.stopPlayback()
		return false
	}

	zlog.Debug().Msgf("monitor: advancing: title=%s index=%d", next.Title, nextIndex)

	if err := m.player.LoadTrack(next); err != nil {
		zlog.Error().Err(err).Msgf("monitor: failed to load next track: path=%s", next.Path)
		m.stopPlayback()
		return false
	}
	if err := m.player.Play(); err != nil {
		zlog.Error().Err(err).Msgf("monitor: failed to play next track: path=%s", next.Path)
		m.stopPlayback()
		return false
	}

	m.events.OnTrackStarted(next, nextIndex)
	return true
}

// nextIndex resolves the track that should follow the one that just
// ended. With shuffle on (and repeat not SINGLE) the playlist picks a
// random index; otherwise the loop policy decides.
func (m *Monitor) nextIndex() (int, bool) {
	if m.playlist.ShuffleEnabled() && m.loop.RepeatMode() != RepeatSingle {
		if idx, ok := m.playlist.NextShuffleIndex(); ok {
			m.playlist.SetCurrentIndex(idx)
			return idx, true
		}
		// Single-track playlists fall through to the loop policy.
	}
	return m.loop.HandleTrackFinished()
}

// stopPlayback stops the player and reports the stop. The loop itself
// terminates by returning from run; the running flag is cleared in
// markStopped.
func (m *Monitor) stopPlayback() {
	if err := m.player.Stop(); err != nil {
		zlog.Warn().Err(err).Msg("monitor: stop after completion failed")
	}
	m.events.OnPlaybackStopped()
}

// markStopped clears the running flag when the loop exits on its own
// (as opposed to via Stop).
func (m *Monitor) markStopped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

func stopped(stopCh chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}
