package library

import (
	"io/fs"
	"sort"

	"github.com/dhowden/tag"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/soramane/tunebox/internal/domain/track"
	"github.com/soramane/tunebox/internal/infra/config"
)

// Scanner walks library directories and turns accepted audio files
// into tracks, enriching them with tag metadata where available.
type Scanner struct {
	fs    afero.Fs
	chain *Chain
}

// NewScanner creates a scanner over the given filesystem using the
// library config's acceptance rules.
func NewScanner(afs afero.Fs, cfg config.LibraryConfig) *Scanner {
	return &Scanner{
		fs: afs,
		chain: NewChain(
			NewExtensionFilter(cfg.Extensions),
			NewReadableFilter(),
			NewMinDurationFilter(cfg.MinSeconds),
		),
	}
}

// Scan walks each directory and returns the accepted tracks in path
// order. Unreadable directories are logged and skipped; a missing
// directory is not an error.
func (s *Scanner) Scan(dirs []string) []*track.Track {
	var tracks []*track.Track

	for _, dir := range dirs {
		err := afero.Walk(s.fs, dir, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				zlog.Warn().Err(err).Msgf("library: skipping %s", path)
				return nil
			}
			if info.IsDir() {
				return nil
			}

			t := s.probe(path)
			if result := s.chain.Execute(s.fs, t); !result.Accepted {
				zlog.Debug().Msgf("library: rejected: path=%s reason=%s", path, result.Reason)
				return nil
			}
			tracks = append(tracks, t)
			return nil
		})
		if err != nil {
			zlog.Warn().Err(err).Msgf("library: failed to walk %s", dir)
		}
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Path < tracks[j].Path })
	zlog.Info().Msgf("library: scan complete: dirs=%d tracks=%d", len(dirs), len(tracks))
	return tracks
}

// Probe builds a track for a single file, outside of a directory walk.
func (s *Scanner) Probe(path string) (*track.Track, bool) {
	t := s.probe(path)
	if result := s.chain.Execute(s.fs, t); !result.Accepted {
		zlog.Debug().Msgf("library: rejected: path=%s reason=%s", path, result.Reason)
		return nil, false
	}
	return t, true
}

// probe reads tag metadata from the file; files without readable tags
// fall back to "Artist - Title" filename parsing.
func (s *Scanner) probe(path string) *track.Track {
	f, err := s.fs.Open(path)
	if err != nil {
		return track.FromFilename(path)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return track.FromFilename(path)
	}

	var t *track.Track
	if meta.Title() == "" {
		t = track.FromFilename(path)
	} else {
		t = track.New(path, meta.Title(), meta.Artist(), 0)
	}
	if album := meta.Album(); album != "" {
		t.Metadata["album"] = album
	}
	if genre := meta.Genre(); genre != "" {
		t.Metadata["genre"] = genre
	}
	t.Metadata["format"] = string(meta.Format())
	return t
}
