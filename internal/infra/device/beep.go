// Package device provides the beep-backed audio player.
package device

import (
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"

	"github.com/soramane/tunebox/internal/app/playback"
	"github.com/soramane/tunebox/internal/domain/track"
)

const (
	defaultSampleRate = 44100
	defaultBufferMs   = 100
	defaultQuality    = 4

	// Below this the volume effect switches to hard silence instead of
	// chasing -inf dB.
	silenceThreshold = 0.01
)

// Config holds beep backend settings, decoded from the backend
// settings map in the engine config.
type Config struct {
	SampleRate int `mapstructure:"sample_rate"`
	BufferMs   int `mapstructure:"buffer_ms"`
	Quality    int `mapstructure:"quality"`
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = defaultSampleRate
	}
	if c.BufferMs <= 0 {
		c.BufferMs = defaultBufferMs
	}
	if c.Quality <= 0 {
		c.Quality = defaultQuality
	}
	return c
}

// BeepPlayer plays local audio files through the gopxl/beep speaker.
// It owns exactly one loaded track at a time. The speaker is
// initialized once, on first load; every stream is resampled to the
// configured rate.
type BeepPlayer struct {
	mu sync.Mutex

	cfg          Config
	sampleRate   beep.SampleRate
	speakerReady bool

	current  *track.Track
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	state    playback.State
	vol      float64

	// finished is set by the speaker's completion callback; gen
	// invalidates callbacks from streams that were stopped or replaced.
	finished atomic.Bool
	gen      atomic.Uint64
}

// NewBeepPlayer creates a beep-backed player. The speaker device is
// opened lazily on the first successful LoadTrack.
func NewBeepPlayer(cfg Config) *BeepPlayer {
	cfg = cfg.withDefaults()
	return &BeepPlayer{
		cfg:        cfg,
		sampleRate: beep.SampleRate(cfg.SampleRate),
		vol:        0.7,
	}
}

// LoadTrack opens and decodes the file, making it the current track.
// Any previous playback is implicitly stopped.
func (p *BeepPlayer) LoadTrack(t *track.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t == nil {
		return playback.ErrNoTrack
	}

	f, err := os.Open(t.Path)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", t.Path)
	}

	streamer, format, err := decode(t.Ext(), f)
	if err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "cannot decode %s", t.Path)
	}

	if !p.speakerReady {
		buffer := p.sampleRate.N(time.Duration(p.cfg.BufferMs) * time.Millisecond)
		if err := speaker.Init(p.sampleRate, buffer); err != nil {
			_ = streamer.Close()
			return errors.Wrap(err, "cannot open speaker")
		}
		p.speakerReady = true
	}

	p.stopLocked()
	if p.streamer != nil {
		_ = p.streamer.Close()
	}

	p.current = t
	p.streamer = streamer
	p.format = format
	zlog.Debug().Msgf("device: loaded: title=%s rate=%d", t.Title, format.SampleRate)
	return nil
}

// Play starts playback of the loaded track from the beginning.
// Calling Play while already playing is a no-op.
func (p *BeepPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return playback.ErrNoTrack
	}
	if p.state == playback.StatePlaying {
		return nil
	}

	// Detach the stream from the speaker before rewinding it.
	speaker.Clear()
	if err := p.streamer.Seek(0); err != nil {
		return errors.Wrap(err, "cannot rewind stream")
	}

	resampled := beep.Resample(p.cfg.Quality, p.format.SampleRate, p.sampleRate, p.streamer)
	p.volume = &effects.Volume{Streamer: resampled, Base: 2}
	p.applyVolumeLocked()
	p.ctrl = &beep.Ctrl{Streamer: p.volume}

	p.finished.Store(false)
	myGen := p.gen.Add(1)

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		// Runs on the speaker goroutine; stale streams are ignored.
		if p.gen.Load() == myGen {
			p.finished.Store(true)
		}
	})))

	p.state = playback.StatePlaying
	zlog.Debug().Msgf("device: playing: title=%s", p.current.Title)
	return nil
}

// Pause pauses playback; only valid while playing.
func (p *BeepPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != playback.StatePlaying {
		return playback.ErrNotPlaying
	}

	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = playback.StatePaused
	return nil
}

// Resume resumes playback; only valid while paused.
func (p *BeepPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != playback.StatePaused {
		return playback.ErrNotPaused
	}

	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = playback.StatePlaying
	return nil
}

// Stop stops playback. The loaded track stays loaded and a later Play
// starts it over.
func (p *BeepPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	return nil
}

func (p *BeepPlayer) stopLocked() {
	if p.speakerReady && p.state != playback.StateStopped {
		speaker.Clear()
	}
	p.gen.Add(1) // invalidate any in-flight completion callback
	p.finished.Store(false)
	p.ctrl = nil
	p.volume = nil
	p.state = playback.StateStopped
}

// SetVolume sets the normalized volume. Out-of-range values are
// rejected and the previous volume stays in effect.
func (p *BeepPlayer) SetVolume(v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 || v > 1 || math.IsNaN(v) {
		return playback.ErrVolumeRange
	}

	p.vol = v
	if p.volume != nil {
		speaker.Lock()
		p.applyVolumeLocked()
		speaker.Unlock()
	}
	return nil
}

// applyVolumeLocked maps the normalized volume onto the effect's
// exponential scale (base 2, unity at 1.0).
func (p *BeepPlayer) applyVolumeLocked() {
	if p.vol < silenceThreshold {
		p.volume.Silent = true
		return
	}
	p.volume.Silent = false
	p.volume.Volume = math.Log2(p.vol)
}

// Volume returns the current normalized volume.
func (p *BeepPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vol
}

// State returns the physical playback state. A track that played to
// its end still reports StatePlaying until Stop or the next load; the
// monitor pairs State with TrackFinished to detect completion.
func (p *BeepPlayer) State() playback.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// TrackFinished reports whether the current stream drained. A paused
// track is never finished.
func (p *BeepPlayer) TrackFinished() bool {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()

	return p.finished.Load() && state != playback.StatePaused
}

// Close stops playback and releases the decoder and the speaker.
func (p *BeepPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
	if p.speakerReady {
		speaker.Close()
		p.speakerReady = false
	}
	p.current = nil
	return nil
}

// decode picks the decoder by file extension. Decoding itself is
// delegated entirely to the beep codec packages.
func decode(ext string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, errors.Newf("unsupported audio format: %q", ext)
	}
}
