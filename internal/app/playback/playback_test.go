package playback

import (
	"fmt"
	"sync"

	"github.com/soramane/tunebox/internal/domain/playlist"
	"github.com/soramane/tunebox/internal/domain/track"
)

// fakePlayer implements Player for tests. Track completion is
// simulated by calling finish().
type fakePlayer struct {
	mu sync.Mutex

	loaded   *track.Track
	state    State
	vol      float64
	finished bool

	failLoad map[string]bool // paths whose load fails
	failPlay bool

	loadCount int
	playCount int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{vol: 0.7, failLoad: make(map[string]bool)}
}

func (p *fakePlayer) LoadTrack(t *track.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t == nil {
		return ErrNoTrack
	}
	if p.failLoad[t.Path] {
		return fmt.Errorf("fake: cannot open %s", t.Path)
	}
	p.loadCount++
	p.loaded = t
	p.state = StateStopped
	p.finished = false
	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded == nil {
		return ErrNoTrack
	}
	if p.failPlay {
		return fmt.Errorf("fake: device failure")
	}
	p.playCount++
	p.state = StatePlaying
	p.finished = false
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying {
		return ErrNotPlaying
	}
	p.state = StatePaused
	return nil
}

func (p *fakePlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePaused {
		return ErrNotPaused
	}
	p.state = StatePlaying
	return nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateStopped
	p.finished = false
	return nil
}

func (p *fakePlayer) SetVolume(v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 || v > 1 {
		return ErrVolumeRange
	}
	p.vol = v
	return nil
}

func (p *fakePlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vol
}

func (p *fakePlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *fakePlayer) TrackFinished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished && p.state != StatePaused
}

func (p *fakePlayer) Close() error { return nil }

// finish marks the current track as having played to its end, the way
// a real backend's stream draining would.
func (p *fakePlayer) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

func (p *fakePlayer) loadedTitle() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded == nil {
		return ""
	}
	return p.loaded.Title
}

// recordingEvents captures lifecycle notifications for assertions.
type recordingEvents struct {
	mu      sync.Mutex
	entries []string
}

func (e *recordingEvents) record(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, s)
}

func (e *recordingEvents) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.entries))
	copy(out, e.entries)
	return out
}

func (e *recordingEvents) OnTrackStarted(t *track.Track, index int) {
	e.record(fmt.Sprintf("started:%s:%d", t.Title, index))
}

func (e *recordingEvents) OnTrackFinished(t *track.Track, index int) {
	e.record(fmt.Sprintf("finished:%s:%d", t.Title, index))
}

func (e *recordingEvents) OnPlaybackPaused(t *track.Track, index int) {
	e.record(fmt.Sprintf("paused:%s:%d", t.Title, index))
}

func (e *recordingEvents) OnPlaybackResumed(t *track.Track, index int) {
	e.record(fmt.Sprintf("resumed:%s:%d", t.Title, index))
}

func (e *recordingEvents) OnPlaybackStopped() {
	e.record("stopped")
}

func (e *recordingEvents) OnRepeatModeChanged(mode RepeatMode) {
	e.record("mode:" + mode.String())
}

// newQueue builds a playlist with n named tracks.
func newQueue(titles ...string) *playlist.Playlist {
	pl := playlist.New()
	for i, title := range titles {
		pl.AddTrack(track.New(fmt.Sprintf("/music/%d.mp3", i), title, "Tester", 0))
	}
	return pl
}
