package playback

import (
	"errors"

	"github.com/soramane/tunebox/internal/domain/track"
)

// Errors
var (
	ErrNoTrack      = errors.New("no track loaded")
	ErrNotPlaying   = errors.New("not playing")
	ErrNotPaused    = errors.New("not paused")
	ErrVolumeRange  = errors.New("volume out of range [0,1]")
	ErrTrackMissing = errors.New("track not found in playlist")
)

// Player is the thin wrapper over a backend audio device. It owns
// exactly one loaded track and its play/pause/stop state.
//
// Implementations never panic across this interface; backend failures
// come back as errors and leave the previous state in effect.
type Player interface {
	// LoadTrack makes the track current, implicitly stopping any
	// previous playback. Fails if the file is missing or the backend
	// cannot open it.
	LoadTrack(t *track.Track) error

	// Play starts playback of the loaded track.
	Play() error

	// Pause pauses playback. Fails with ErrNotPlaying unless playing.
	Pause() error

	// Resume resumes playback. Fails with ErrNotPaused unless paused.
	Resume() error

	// Stop stops playback. The loaded track stays loaded.
	Stop() error

	// SetVolume sets the normalized volume. Values outside [0,1] fail
	// with ErrVolumeRange and leave the previous volume in effect.
	SetVolume(v float64) error

	// Volume returns the current normalized volume.
	Volume() float64

	// State returns the physical playback state.
	State() State

	// TrackFinished reports whether the current track has played to
	// its end. A paused track is never finished.
	TrackFinished() bool

	// Close releases the backend device.
	Close() error
}
