// Package playlist provides the ordered playback queue with a cursor.
package playlist

import (
	"math/rand"
	"sync"

	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/soramane/tunebox/internal/domain/track"
)

// DefaultShuffleWindow is how many recently played indices shuffle
// selection avoids (capped at size-1 for small playlists).
const DefaultShuffleWindow = 3

// Playlist is an ordered sequence of tracks with a current-index
// cursor and shuffle bookkeeping. It is shared between the caller and
// the playback monitor goroutine, so all access goes through a mutex.
//
// Invariant: if the playlist is non-empty, 0 <= currentIndex < size.
type Playlist struct {
	mu sync.RWMutex

	tracks         []*track.Track
	currentIndex   int
	shuffleEnabled bool
	shuffleHistory []int // recently picked indices, oldest first
	shuffleWindow  int
	rng            *rand.Rand
}

// Option configures a Playlist.
type Option func(*Playlist)

// WithShuffleWindow overrides the shuffle anti-repeat window.
func WithShuffleWindow(n int) Option {
	return func(p *Playlist) {
		if n > 0 {
			p.shuffleWindow = n
		}
	}
}

// WithRand injects the random source used for shuffle selection.
func WithRand(rng *rand.Rand) Option {
	return func(p *Playlist) { p.rng = rng }
}

// New creates an empty playlist.
func New(opts ...Option) *Playlist {
	p := &Playlist{
		tracks:        make([]*track.Track, 0),
		shuffleWindow: DefaultShuffleWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddTrack appends a track to the end of the playlist.
func (p *Playlist) AddTrack(t *track.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracks = append(p.tracks, t)
	zlog.Debug().Msgf("playlist: added track: title=%s path=%s size=%d", t.Title, t.Path, len(p.tracks))
}

// RemoveTrack removes the track at index, shifting the cursor so it
// stays on the same logical track where possible. Removing the current
// track clamps the cursor to the last valid index. Returns false for
// out-of-range input.
func (p *Playlist) RemoveTrack(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.validIndexLocked(index) {
		return false
	}

	removed := p.tracks[index]
	p.tracks = append(p.tracks[:index], p.tracks[index+1:]...)

	if index < p.currentIndex {
		p.currentIndex--
	} else if index == p.currentIndex && p.currentIndex >= len(p.tracks) {
		p.currentIndex = max(0, len(p.tracks)-1)
	}

	zlog.Debug().Msgf("playlist: removed track: title=%s index=%d size=%d", removed.Title, index, len(p.tracks))
	return true
}

// MoveTrack moves a track from one position to another, keeping the
// cursor on the same logical track.
func (p *Playlist) MoveTrack(from, to int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.validIndexLocked(from) || !p.validIndexLocked(to) {
		return false
	}

	t := p.tracks[from]
	p.tracks = append(p.tracks[:from], p.tracks[from+1:]...)
	p.tracks = append(p.tracks[:to], append([]*track.Track{t}, p.tracks[to:]...)...)

	switch {
	case from == p.currentIndex:
		p.currentIndex = to
	case from < p.currentIndex && p.currentIndex <= to:
		p.currentIndex--
	case to <= p.currentIndex && p.currentIndex < from:
		p.currentIndex++
	}
	return true
}

// Track returns the track at index, or nil if out of range.
func (p *Playlist) Track(index int) *track.Track {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.validIndexLocked(index) {
		return nil
	}
	return p.tracks[index]
}

// CurrentTrack returns the track under the cursor, or nil if empty.
func (p *Playlist) CurrentTrack() *track.Track {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.validIndexLocked(p.currentIndex) {
		return nil
	}
	return p.tracks[p.currentIndex]
}

// CurrentIndex returns the cursor position.
func (p *Playlist) CurrentIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentIndex
}

// SetCurrentIndex moves the cursor. Returns false for out-of-range input.
func (p *Playlist) SetCurrentIndex(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.validIndexLocked(index) {
		return false
	}
	p.currentIndex = index
	return true
}

// Size returns the number of tracks.
func (p *Playlist) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tracks)
}

// Clear removes all tracks and resets the cursor and shuffle history.
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracks = p.tracks[:0]
	p.currentIndex = 0
	p.shuffleHistory = p.shuffleHistory[:0]
	zlog.Debug().Msg("playlist: cleared")
}

// Tracks returns a copy of all tracks for display purposes.
func (p *Playlist) Tracks() []*track.Track {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*track.Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// NextIndex returns the index after the cursor. Pure query, does not
// mutate the cursor. ok is false at the end or when empty.
func (p *Playlist) NextIndex() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.currentIndex < len(p.tracks)-1 {
		return p.currentIndex + 1, true
	}
	return 0, false
}

// PreviousIndex returns the index before the cursor. Pure query.
func (p *Playlist) PreviousIndex() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.currentIndex > 0 && len(p.tracks) > 0 {
		return p.currentIndex - 1, true
	}
	return 0, false
}

// FirstIndex returns 0 for a non-empty playlist.
func (p *Playlist) FirstIndex() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.tracks) == 0 {
		return 0, false
	}
	return 0, true
}

// LastIndex returns the final index for a non-empty playlist.
func (p *Playlist) LastIndex() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.tracks) == 0 {
		return 0, false
	}
	return len(p.tracks) - 1, true
}

// IsEmpty reports whether the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tracks) == 0
}

// IsAtEnd reports whether the cursor is on the last track.
func (p *Playlist) IsAtEnd() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentIndex >= len(p.tracks)-1
}

// IsAtBeginning reports whether the cursor is on the first track.
func (p *Playlist) IsAtBeginning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentIndex == 0
}

// EnableShuffle switches shuffle on and resets the anti-repeat history.
func (p *Playlist) EnableShuffle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.shuffleEnabled = true
	p.shuffleHistory = p.shuffleHistory[:0]
	zlog.Debug().Msg("playlist: shuffle enabled")
}

// DisableShuffle switches shuffle off and resets the history.
func (p *Playlist) DisableShuffle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.shuffleEnabled = false
	p.shuffleHistory = p.shuffleHistory[:0]
	zlog.Debug().Msg("playlist: shuffle disabled")
}

// ShuffleEnabled reports whether shuffle is on.
func (p *Playlist) ShuffleEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shuffleEnabled
}

// NextShuffleIndex picks a random index, avoiding the
// min(window, size-1) most recently picked indices. Once every track
// has been picked under that constraint the history resets and any
// index except the current one is eligible. ok is false when shuffle
// is off or the playlist has fewer than two tracks.
func (p *Playlist) NextShuffleIndex() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.shuffleEnabled || len(p.tracks) <= 1 {
		return 0, false
	}

	if len(p.shuffleHistory) >= len(p.tracks) {
		p.shuffleHistory = p.shuffleHistory[:0]
	}

	window := min(p.shuffleWindow, len(p.tracks)-1)
	recent := p.shuffleHistory
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	candidates := make([]int, 0, len(p.tracks))
	for i := range p.tracks {
		if i != p.currentIndex && !lo.Contains(recent, i) {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		// Exhausted under the window constraint: anything but the
		// current track is fair game.
		candidates = lo.Filter(lo.Range(len(p.tracks)), func(i int, _ int) bool {
			return i != p.currentIndex
		})
	}

	if len(candidates) == 0 {
		return 0, false
	}

	next := candidates[p.intn(len(candidates))]
	p.shuffleHistory = append(p.shuffleHistory, next)
	return next, true
}

func (p *Playlist) intn(n int) int {
	if p.rng != nil {
		return p.rng.Intn(n)
	}
	return rand.Intn(n)
}

func (p *Playlist) validIndexLocked(index int) bool {
	return index >= 0 && index < len(p.tracks)
}
