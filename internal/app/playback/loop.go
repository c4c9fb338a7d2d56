package playback

import (
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/soramane/tunebox/internal/domain/playlist"
)

// LoopController decides, from the repeat mode and the playlist
// position, what should play after the current track ends. The policy
// itself is pure; only HandleTrackFinished moves the playlist cursor.
type LoopController struct {
	mu       sync.RWMutex
	playlist *playlist.Playlist
	mode     RepeatMode
}

// NewLoopController creates a loop controller bound to a playlist.
func NewLoopController(pl *playlist.Playlist) *LoopController {
	return &LoopController{playlist: pl, mode: RepeatOff}
}

// SetRepeatMode sets the repeat mode.
func (c *LoopController) SetRepeatMode(mode RepeatMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
	zlog.Debug().Msgf("loop: repeat mode set: mode=%s", mode)
}

// RepeatMode returns the current repeat mode.
func (c *LoopController) RepeatMode() RepeatMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// CycleRepeatMode advances OFF -> SINGLE -> PLAYLIST -> OFF and
// returns the new mode.
func (c *LoopController) CycleRepeatMode() RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = RepeatMode((int(c.mode) + 1) % 3)
	zlog.Debug().Msgf("loop: repeat mode cycled: mode=%s", c.mode)
	return c.mode
}

// HandleTrackFinished resolves the index that should play after the
// current track ends, moving the playlist cursor to it. ok is false
// when playback should stop (queue exhausted under OFF, or empty
// playlist under any mode).
func (c *LoopController) HandleTrackFinished() (int, bool) {
	c.mu.RLock()
	mode := c.mode
	c.mu.RUnlock()

	if c.playlist.IsEmpty() {
		return 0, false
	}

	switch mode {
	case RepeatSingle:
		return c.playlist.CurrentIndex(), true

	case RepeatPlaylist:
		if c.playlist.IsAtEnd() {
			first, ok := c.playlist.FirstIndex()
			if !ok {
				return 0, false
			}
			c.playlist.SetCurrentIndex(first)
			return first, true
		}
		next, ok := c.playlist.NextIndex()
		if !ok {
			return 0, false
		}
		c.playlist.SetCurrentIndex(next)
		return next, true

	default: // RepeatOff
		if c.playlist.IsAtEnd() {
			zlog.Debug().Msg("loop: end of playlist, stopping")
			return 0, false
		}
		next, ok := c.playlist.NextIndex()
		if !ok {
			return 0, false
		}
		c.playlist.SetCurrentIndex(next)
		return next, true
	}
}

// NextTrackIndex previews what HandleTrackFinished would choose
// without moving the cursor.
func (c *LoopController) NextTrackIndex() (int, bool) {
	c.mu.RLock()
	mode := c.mode
	c.mu.RUnlock()

	if c.playlist.IsEmpty() {
		return 0, false
	}

	switch mode {
	case RepeatSingle:
		return c.playlist.CurrentIndex(), true
	case RepeatPlaylist:
		if c.playlist.IsAtEnd() {
			return c.playlist.FirstIndex()
		}
		return c.playlist.NextIndex()
	default:
		return c.playlist.NextIndex()
	}
}

// PreviousTrackIndex previews the manual-skip-backwards target without
// moving the cursor. PLAYLIST mode wraps from the first track to the
// last; the other modes stop at the beginning.
func (c *LoopController) PreviousTrackIndex() (int, bool) {
	c.mu.RLock()
	mode := c.mode
	c.mu.RUnlock()

	if c.playlist.IsEmpty() {
		return 0, false
	}

	if mode == RepeatPlaylist && c.playlist.IsAtBeginning() {
		return c.playlist.LastIndex()
	}
	return c.playlist.PreviousIndex()
}

// ShouldContinuePlayback reports whether another track would follow
// the current one under the current mode and position.
func (c *LoopController) ShouldContinuePlayback() bool {
	c.mu.RLock()
	mode := c.mode
	c.mu.RUnlock()

	if c.playlist.IsEmpty() {
		return false
	}
	if mode == RepeatSingle || mode == RepeatPlaylist {
		return true
	}
	return !c.playlist.IsAtEnd()
}
