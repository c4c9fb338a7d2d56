// Package track provides the Track domain entity.
package track

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Track represents one playable audio file plus descriptive metadata.
// Fields other than Metadata are fixed at creation time; Metadata is
// enriched once, when the file is added to the playlist.
type Track struct {
	ID       string            // Internal track ID (UUID)
	Path     string            // Absolute or relative path to the audio file
	Title    string            // Track title ("Unknown" if not resolvable)
	Artist   string            // Artist name ("Unknown" if not resolvable)
	Duration time.Duration     // Track duration (zero if unknown)
	Metadata map[string]string // Free-form metadata (album, genre, codec, ...)
}

// New creates a Track for the given path. Empty title/artist fall back
// to "Unknown", matching what the UI layer expects to display.
func New(path, title, artist string, duration time.Duration) *Track {
	if title == "" {
		title = "Unknown"
	}
	if artist == "" {
		artist = "Unknown"
	}
	return &Track{
		ID:       uuid.New().String(),
		Path:     path,
		Title:    title,
		Artist:   artist,
		Duration: duration,
		Metadata: make(map[string]string),
	}
}

// FromFilename creates a Track by parsing an "Artist - Title" file name.
// Files without the separator use the bare name as the title.
func FromFilename(path string) *Track {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if artist, title, found := strings.Cut(name, " - "); found {
		return New(path, strings.TrimSpace(title), strings.TrimSpace(artist), 0)
	}
	return New(path, name, "", 0)
}

// Summary is the reduced view of a track exposed through status
// snapshots and lifecycle events.
type Summary struct {
	Title  string
	Artist string
	Path   string
}

// Summary returns the track's display summary.
func (t *Track) Summary() Summary {
	return Summary{Title: t.Title, Artist: t.Artist, Path: t.Path}
}

// Ext returns the lowercased file extension including the dot.
func (t *Track) Ext() string {
	return strings.ToLower(filepath.Ext(t.Path))
}
