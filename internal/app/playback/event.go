package playback

import "github.com/soramane/tunebox/internal/domain/track"

// Events receives lifecycle notifications from the engine. Callbacks
// are invoked synchronously at the point of transition and are
// observational only: they must not call back into the engine and
// cannot alter the transition outcome.
//
// The monitor goroutine fires OnTrackFinished/OnTrackStarted during
// automatic progression, so implementations must be safe to call from
// a goroutine other than the one driving the facade.
type Events interface {
	OnTrackStarted(t *track.Track, index int)
	OnTrackFinished(t *track.Track, index int)
	OnPlaybackPaused(t *track.Track, index int)
	OnPlaybackResumed(t *track.Track, index int)
	OnPlaybackStopped()
	OnRepeatModeChanged(mode RepeatMode)
}

// NopEvents is the default sink; it discards every notification.
type NopEvents struct{}

func (NopEvents) OnTrackStarted(*track.Track, int)    {}
func (NopEvents) OnTrackFinished(*track.Track, int)   {}
func (NopEvents) OnPlaybackPaused(*track.Track, int)  {}
func (NopEvents) OnPlaybackResumed(*track.Track, int) {}
func (NopEvents) OnPlaybackStopped()                  {}
func (NopEvents) OnRepeatModeChanged(RepeatMode)      {}
