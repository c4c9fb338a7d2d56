package playback

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/soramane/tunebox/internal/domain/playlist"
	"github.com/soramane/tunebox/internal/domain/track"
)

// Status is an immutable snapshot of the whole engine, built for the
// UI layer. The engine's own logic never reads it.
type Status struct {
	IsPlaying     bool
	PlaybackState string
	CurrentTrack  *track.Summary // nil when the playlist is empty
	CurrentIndex  int
	PlaylistSize  int
	RepeatMode    string
	RepeatDisplay string
	Volume        float64
	Shuffle       bool
	Monitor       MonitorStatus
}

// MonitorStatus carries the monitor diagnostics of a Status snapshot.
type MonitorStatus struct {
	IsMonitoring   bool
	Interval       time.Duration
	GoroutineAlive bool
}

// System is the facade the rest of the application talks to. It
// composes the player, playlist, loop controller and monitor, and is
// the only component callers are expected to hold.
type System struct {
	mu sync.Mutex

	player   Player
	playlist *playlist.Playlist
	loop     *LoopController
	monitor  *Monitor
	events   Events
}

// NewSystem wires a facade over the given components. A nil events
// sink defaults to NopEvents.
func NewSystem(player Player, pl *playlist.Playlist, loop *LoopController, events Events) *System {
	if events == nil {
		events = NopEvents{}
	}
	return &System{
		player:   player,
		playlist: pl,
		loop:     loop,
		monitor:  NewMonitor(player, pl, loop, events),
		events:   events,
	}
}

// LoadAndPlayTrack moves the cursor to index, loads and plays the
// track there, and starts end-of-track monitoring. On failure the
// system is left stopped with the monitor not running.
func (s *System) LoadAndPlayTrack(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.playlist.Track(index)
	if t == nil {
		zlog.Warn().Msgf("system: no track at index %d", index)
		return ErrTrackMissing
	}

	s.playlist.SetCurrentIndex(index)

	if err := s.player.LoadTrack(t); err != nil {
		zlog.Error().Err(err).Msgf("system: load failed: path=%s", t.Path)
		return err
	}
	if err := s.player.Play(); err != nil {
		zlog.Error().Err(err).Msgf("system: play failed: path=%s", t.Path)
		return err
	}

	s.monitor.Start()
	s.events.OnTrackStarted(t, index)
	return nil
}

// PausePlayback pauses the current track.
func (s *System) PausePlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.player.Pause(); err != nil {
		return err
	}
	if t := s.playlist.CurrentTrack(); t != nil {
		s.events.OnPlaybackPaused(t, s.playlist.CurrentIndex())
	}
	return nil
}

// ResumePlayback resumes a paused track.
func (s *System) ResumePlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.player.Resume(); err != nil {
		return err
	}
	if t := s.playlist.CurrentTrack(); t != nil {
		s.events.OnPlaybackResumed(t, s.playlist.CurrentIndex())
	}
	return nil
}

// StopPlayback stops the monitor first, then the player, so the
// monitor can never race a teardown.
func (s *System) StopPlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.monitor.Stop()
	if err := s.player.Stop(); err != nil {
		return err
	}
	s.events.OnPlaybackStopped()
	return nil
}

// NextTrack skips forward. The target is the loop controller's
// preview (or a shuffle pick), so skips are mode-aware: PLAYLIST wraps
// at the end, OFF does not skip past it.
func (s *System) NextTrack() error {
	if idx, ok := s.skipTarget(true); ok {
		return s.LoadAndPlayTrack(idx)
	}
	return ErrTrackMissing
}

// PreviousTrack skips backward, mode-aware like NextTrack.
func (s *System) PreviousTrack() error {
	if idx, ok := s.skipTarget(false); ok {
		return s.LoadAndPlayTrack(idx)
	}
	return ErrTrackMissing
}

func (s *System) skipTarget(forward bool) (int, bool) {
	if s.playlist.ShuffleEnabled() && s.loop.RepeatMode() != RepeatSingle {
		if idx, ok := s.playlist.NextShuffleIndex(); ok {
			return idx, true
		}
	}
	if forward {
		return s.loop.NextTrackIndex()
	}
	return s.loop.PreviousTrackIndex()
}

// SetVolume sets the playback volume; out-of-range values are
// rejected and the previous volume stays in effect.
func (s *System) SetVolume(v float64) error {
	if err := s.player.SetVolume(v); err != nil {
		zlog.Warn().Err(err).Msgf("system: volume rejected: value=%v", v)
		return err
	}
	return nil
}

// CycleRepeatMode advances the repeat mode and returns the new one.
func (s *System) CycleRepeatMode() RepeatMode {
	mode := s.loop.CycleRepeatMode()
	s.events.OnRepeatModeChanged(mode)
	return mode
}

// SetRepeatMode sets the repeat mode directly.
func (s *System) SetRepeatMode(mode RepeatMode) {
	s.loop.SetRepeatMode(mode)
	s.events.OnRepeatModeChanged(mode)
}

// AddTrack appends a track to the playlist.
func (s *System) AddTrack(t *track.Track) {
	s.playlist.AddTrack(t)
}

// RemoveTrack removes the track at index.
func (s *System) RemoveTrack(index int) bool {
	return s.playlist.RemoveTrack(index)
}

// ClearPlaylist stops playback and empties the queue.
func (s *System) ClearPlaylist() {
	if err := s.StopPlayback(); err != nil {
		zlog.Warn().Err(err).Msg("system: stop before clear failed")
	}
	s.playlist.Clear()
}

// ToggleShuffle flips shuffle and returns the new setting.
func (s *System) ToggleShuffle() bool {
	if s.playlist.ShuffleEnabled() {
		s.playlist.DisableShuffle()
		return false
	}
	s.playlist.EnableShuffle()
	return true
}

// ShuffleEnabled reports whether shuffle is on.
func (s *System) ShuffleEnabled() bool {
	return s.playlist.ShuffleEnabled()
}

// CurrentTrack returns the track under the playlist cursor, or nil.
func (s *System) CurrentTrack() *track.Track {
	return s.playlist.CurrentTrack()
}

// Playlist exposes the queue for UI listing and library loading.
func (s *System) Playlist() *playlist.Playlist {
	return s.playlist
}

// StartMonitoring starts end-of-track supervision. Idempotent.
func (s *System) StartMonitoring() {
	s.monitor.Start()
}

// StopMonitoring stops end-of-track supervision.
func (s *System) StopMonitoring() {
	s.monitor.Stop()
}

// SetMonitorInterval tunes the monitor's poll interval.
func (s *System) SetMonitorInterval(d time.Duration) bool {
	return s.monitor.SetInterval(d)
}

// Status returns a snapshot of the engine for the UI layer.
func (s *System) Status() Status {
	st := Status{
		PlaybackState: s.player.State().String(),
		IsPlaying:     s.player.State() == StatePlaying,
		CurrentIndex:  s.playlist.CurrentIndex(),
		PlaylistSize:  s.playlist.Size(),
		RepeatMode:    s.loop.RepeatMode().String(),
		RepeatDisplay: s.loop.RepeatMode().Display(),
		Volume:        s.player.Volume(),
		Shuffle:       s.playlist.ShuffleEnabled(),
		Monitor: MonitorStatus{
			IsMonitoring:   s.monitor.IsRunning(),
			Interval:       s.monitor.Interval(),
			GoroutineAlive: s.monitor.GoroutineAlive(),
		},
	}
	if t := s.playlist.CurrentTrack(); t != nil {
		summary := t.Summary()
		st.CurrentTrack = &summary
	}
	return st
}

// Close stops the monitor and releases the backend device.
func (s *System) Close() error {
	s.monitor.Stop()
	if err := s.player.Stop(); err != nil {
		zlog.Warn().Err(err).Msg("system: stop during close failed")
	}
	return s.player.Close()
}
