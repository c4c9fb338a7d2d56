// Package playback provides the audio engine: player abstraction, loop
// policy, end-of-track monitoring and the coordinating facade.
package playback

// State represents the physical playback state of the audio backend.
// It reflects what the device is actually doing, not a UI intention.
type State int

const (
	StateStopped State = iota // No track playing
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// RepeatMode governs what plays after the current track ends.
type RepeatMode int

const (
	RepeatOff      RepeatMode = iota // Stop at the end of the queue
	RepeatSingle                     // Repeat the current track
	RepeatPlaylist                   // Repeat the whole queue
)

// String returns the string representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatSingle:
		return "single"
	case RepeatPlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// Display returns the human-readable label shown in the UI.
func (m RepeatMode) Display() string {
	switch m {
	case RepeatOff:
		return "No Repeat"
	case RepeatSingle:
		return "Repeat Track"
	case RepeatPlaylist:
		return "Repeat Playlist"
	default:
		return "Unknown"
	}
}
