// Package factory constructs a fully wired audio system from
// configuration, with default or injected component implementations.
package factory

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/soramane/tunebox/internal/app/playback"
	"github.com/soramane/tunebox/internal/domain/playlist"
	"github.com/soramane/tunebox/internal/infra/config"
	"github.com/soramane/tunebox/internal/infra/device"
)

// NewSystem builds a fully wired playback.System: the configured
// backend player, an empty playlist, a loop controller and the facade.
func NewSystem(cfg *config.Config, events playback.Events) (*playback.System, error) {
	player, err := newPlayer(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create audio backend")
	}
	return NewSystemWithPlayer(cfg, player, events)
}

// NewSystemWithPlayer wires the facade around an injected player
// implementation. Used by the default path above and by hosts that
// substitute their own backend.
func NewSystemWithPlayer(cfg *config.Config, player playback.Player, events playback.Events) (*playback.System, error) {
	pl := playlist.New(playlist.WithShuffleWindow(cfg.Engine.ShuffleWindow))
	loop := playback.NewLoopController(pl)
	system := playback.NewSystem(player, pl, loop, events)

	if cfg.Engine.MonitorIntervalMs > 0 {
		system.SetMonitorInterval(time.Duration(cfg.Engine.MonitorIntervalMs) * time.Millisecond)
	}
	if err := player.SetVolume(cfg.Engine.DefaultVolume); err != nil {
		zlog.Warn().Err(err).Msgf("factory: default volume rejected: value=%v", cfg.Engine.DefaultVolume)
	}

	zlog.Info().Msgf("factory: audio system created: backend=%s interval=%dms", cfg.Backend.Type, cfg.Engine.MonitorIntervalMs)
	return system, nil
}

// newPlayer constructs the backend named by the config, decoding its
// settings map into the backend's own config type.
func newPlayer(cfg *config.Config) (playback.Player, error) {
	zlog.Debug().Msgf("factory: creating backend: type=%s settings=%+v", cfg.Backend.Type, cfg.Backend.Settings)

	switch cfg.Backend.Type {
	case "", "beep":
		var bc device.Config
		if err := mapstructure.Decode(cfg.Backend.Settings, &bc); err != nil {
			return nil, errors.Wrap(err, "invalid beep backend settings")
		}
		return device.NewBeepPlayer(bc), nil

	default:
		return nil, errors.Newf("unsupported backend type: %s", cfg.Backend.Type)
	}
}
