package playlist

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soramane/tunebox/internal/domain/track"
)

func newPlaylist(n int, opts ...Option) *Playlist {
	p := New(opts...)
	for i := 0; i < n; i++ {
		p.AddTrack(track.New(fmt.Sprintf("/music/%d.mp3", i), fmt.Sprintf("Track %d", i), "Tester", 0))
	}
	return p
}

func TestPlaylist_AddAndSize(t *testing.T) {
	p := New()
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 0, p.Size())

	p.AddTrack(track.New("/music/a.mp3", "A", "", 0))
	p.AddTrack(track.New("/music/b.mp3", "B", "", 0))

	assert.False(t, p.IsEmpty())
	assert.Equal(t, 2, p.Size())
	assert.Equal(t, "A", p.Track(0).Title)
	assert.Equal(t, "B", p.Track(1).Title)
	assert.Nil(t, p.Track(2))
	assert.Nil(t, p.Track(-1))
}

func TestPlaylist_SetCurrentIndex(t *testing.T) {
	p := newPlaylist(3)

	assert.True(t, p.SetCurrentIndex(2))
	assert.Equal(t, 2, p.CurrentIndex())
	assert.Equal(t, "Track 2", p.CurrentTrack().Title)

	assert.False(t, p.SetCurrentIndex(3))
	assert.False(t, p.SetCurrentIndex(-1))
	assert.Equal(t, 2, p.CurrentIndex())
}

func TestPlaylist_RemoveTrack(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		cursor        int
		remove        int
		expectedOK    bool
		expectedIdx   int
		expectedSize  int
		expectedTitle string
	}{
		{
			name:          "remove after cursor",
			size:          3,
			cursor:        0,
			remove:        2,
			expectedOK:    true,
			expectedIdx:   0,
			expectedSize:  2,
			expectedTitle: "Track 0",
		},
		{
			name:          "remove before cursor shifts it back",
			size:          3,
			cursor:        2,
			remove:        0,
			expectedOK:    true,
			expectedIdx:   1,
			expectedSize:  2,
			expectedTitle: "Track 2",
		},
		{
			name:          "remove current at end clamps cursor",
			size:          3,
			cursor:        2,
			remove:        2,
			expectedOK:    true,
			expectedIdx:   1,
			expectedSize:  2,
			expectedTitle: "Track 1",
		},
		{
			name:         "remove out of range",
			size:         3,
			cursor:       1,
			remove:       5,
			expectedOK:   false,
			expectedIdx:  1,
			expectedSize: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlaylist(tt.size)
			require.True(t, p.SetCurrentIndex(tt.cursor))

			ok := p.RemoveTrack(tt.remove)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedIdx, p.CurrentIndex())
			assert.Equal(t, tt.expectedSize, p.Size())
			if tt.expectedTitle != "" {
				assert.Equal(t, tt.expectedTitle, p.CurrentTrack().Title)
			}
		})
	}
}

func TestPlaylist_RemoveLastTrack(t *testing.T) {
	p := newPlaylist(1)
	assert.True(t, p.RemoveTrack(0))
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 0, p.CurrentIndex())
	assert.Nil(t, p.CurrentTrack())
}

func TestPlaylist_MoveTrack(t *testing.T) {
	tests := []struct {
		name        string
		cursor      int
		from, to    int
		expectedIdx int
		expectedOK  bool
	}{
		{name: "move current track follows it", cursor: 0, from: 0, to: 2, expectedIdx: 2, expectedOK: true},
		{name: "move across cursor from below", cursor: 1, from: 0, to: 2, expectedIdx: 0, expectedOK: true},
		{name: "move across cursor from above", cursor: 1, from: 2, to: 0, expectedIdx: 2, expectedOK: true},
		{name: "out of range", cursor: 0, from: 0, to: 5, expectedIdx: 0, expectedOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlaylist(3)
			require.True(t, p.SetCurrentIndex(tt.cursor))
			current := p.CurrentTrack()

			ok := p.MoveTrack(tt.from, tt.to)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedIdx, p.CurrentIndex())
			assert.Same(t, current, p.CurrentTrack())
		})
	}
}

func TestPlaylist_Navigation(t *testing.T) {
	p := newPlaylist(3)

	// at the beginning
	assert.True(t, p.IsAtBeginning())
	assert.False(t, p.IsAtEnd())
	next, ok := p.NextIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, next)
	_, ok = p.PreviousIndex()
	assert.False(t, ok)

	// at the end
	require.True(t, p.SetCurrentIndex(2))
	assert.True(t, p.IsAtEnd())
	_, ok = p.NextIndex()
	assert.False(t, ok)
	prev, ok := p.PreviousIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, prev)

	// navigation queries never move the cursor
	assert.Equal(t, 2, p.CurrentIndex())

	first, ok := p.FirstIndex()
	assert.True(t, ok)
	assert.Equal(t, 0, first)
	last, ok := p.LastIndex()
	assert.True(t, ok)
	assert.Equal(t, 2, last)
}

func TestPlaylist_NavigationEmpty(t *testing.T) {
	p := New()

	_, ok := p.NextIndex()
	assert.False(t, ok)
	_, ok = p.PreviousIndex()
	assert.False(t, ok)
	_, ok = p.FirstIndex()
	assert.False(t, ok)
	_, ok = p.LastIndex()
	assert.False(t, ok)
}

func TestPlaylist_Clear(t *testing.T) {
	p := newPlaylist(3)
	require.True(t, p.SetCurrentIndex(2))

	p.Clear()
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 0, p.CurrentIndex())
}

func TestPlaylist_ShuffleToggle(t *testing.T) {
	p := newPlaylist(2)
	assert.False(t, p.ShuffleEnabled())

	p.EnableShuffle()
	assert.True(t, p.ShuffleEnabled())

	p.DisableShuffle()
	assert.False(t, p.ShuffleEnabled())
}

func TestPlaylist_NextShuffleIndex_Disabled(t *testing.T) {
	p := newPlaylist(4)
	_, ok := p.NextShuffleIndex()
	assert.False(t, ok)
}

func TestPlaylist_NextShuffleIndex_TooSmall(t *testing.T) {
	p := newPlaylist(1)
	p.EnableShuffle()
	_, ok := p.NextShuffleIndex()
	assert.False(t, ok)
}

func TestPlaylist_NextShuffleIndex_NeverCurrent(t *testing.T) {
	p := newPlaylist(4, WithRand(rand.New(rand.NewSource(1))))
	p.EnableShuffle()

	for i := 0; i < 50; i++ {
		idx, ok := p.NextShuffleIndex()
		require.True(t, ok)
		assert.NotEqual(t, p.CurrentIndex(), idx)
	}
}

func TestPlaylist_NextShuffleIndex_AntiRepeatWindow(t *testing.T) {
	p := newPlaylist(6, WithRand(rand.New(rand.NewSource(42))))
	p.EnableShuffle()

	for round := 0; round < 10; round++ {
		seen := make(map[int]bool)
		for i := 0; i < 3; i++ { // min(3, size-1) consecutive picks
			idx, ok := p.NextShuffleIndex()
			require.True(t, ok)
			assert.False(t, seen[idx], "index %d repeated within the window", idx)
			seen[idx] = true
		}
	}
}

func TestPlaylist_NextShuffleIndex_ResetsAfterExhaustion(t *testing.T) {
	p := newPlaylist(4, WithRand(rand.New(rand.NewSource(7))))
	p.EnableShuffle()

	// Far more picks than tracks: the history must reset rather than
	// starving the selection.
	for i := 0; i < 40; i++ {
		_, ok := p.NextShuffleIndex()
		require.True(t, ok)
	}
}
