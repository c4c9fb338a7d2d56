// Package library scans local directories for playable audio files.
package library

import (
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/soramane/tunebox/internal/domain/track"
)

// Result represents the result of an acceptance check.
type Result struct {
	Accepted bool
	Reason   string // e.g. "unsupported_extension", "too_short"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given reason.
func Reject(reason string) Result {
	return Result{Accepted: false, Reason: reason}
}

// Filter decides whether a scanned file becomes a playlist track.
type Filter interface {
	// Name returns the filter name.
	Name() string
	// Check inspects the candidate track.
	Check(fs afero.Fs, t *track.Track) Result
}

// Chain executes filters in sequence, stopping at the first rejection.
type Chain struct {
	filters []Filter
}

// NewChain creates an empty chain.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
func (c *Chain) Execute(fs afero.Fs, t *track.Track) Result {
	for _, f := range c.filters {
		if result := f.Check(fs, t); !result.Accepted {
			return result
		}
	}
	return Accept()
}

// ExtensionFilter accepts only configured file extensions.
type ExtensionFilter struct {
	extensions []string
}

// NewExtensionFilter creates the filter for the given extensions
// (each including the leading dot, compared case-insensitively).
func NewExtensionFilter(extensions []string) *ExtensionFilter {
	return &ExtensionFilter{extensions: extensions}
}

func (f *ExtensionFilter) Name() string { return "extension" }

func (f *ExtensionFilter) Check(_ afero.Fs, t *track.Track) Result {
	if lo.Contains(f.extensions, t.Ext()) {
		return Accept()
	}
	return Reject("unsupported_extension")
}

// ReadableFilter rejects files that cannot be opened for reading.
type ReadableFilter struct{}

func NewReadableFilter() *ReadableFilter { return &ReadableFilter{} }

func (f *ReadableFilter) Name() string { return "readable" }

func (f *ReadableFilter) Check(fs afero.Fs, t *track.Track) Result {
	file, err := fs.Open(t.Path)
	if err != nil {
		return Reject("unreadable")
	}
	_ = file.Close()
	return Accept()
}

// MinDurationFilter rejects tracks shorter than a threshold. Tracks
// whose duration is unknown (no tag data) are accepted.
type MinDurationFilter struct {
	minSeconds float64
}

func NewMinDurationFilter(minSeconds float64) *MinDurationFilter {
	return &MinDurationFilter{minSeconds: minSeconds}
}

func (f *MinDurationFilter) Name() string { return "min_duration" }

func (f *MinDurationFilter) Check(_ afero.Fs, t *track.Track) Result {
	if f.minSeconds <= 0 || t.Duration == 0 {
		return Accept()
	}
	if t.Duration.Seconds() < f.minSeconds {
		return Reject("too_short")
	}
	return Accept()
}
