package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tunebox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Engine.MonitorIntervalMs)
	assert.Equal(t, 0.7, cfg.Engine.DefaultVolume)
	assert.Equal(t, 3, cfg.Engine.ShuffleWindow)
	assert.Equal(t, "beep", cfg.Backend.Type)
	assert.Equal(t, []string{".mp3", ".wav", ".flac", ".ogg"}, cfg.Library.Extensions)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "full config",
			yaml: `
engine:
  monitor_interval_ms: 50
  default_volume: 0.5
  shuffle_window: 5
backend:
  type: beep
  settings:
    sample_rate: 48000
library:
  dirs: ["/music"]
  extensions: [".mp3"]
logging:
  level: debug
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 50, cfg.Engine.MonitorIntervalMs)
				assert.Equal(t, 0.5, cfg.Engine.DefaultVolume)
				assert.Equal(t, 5, cfg.Engine.ShuffleWindow)
				assert.Equal(t, 48000, cfg.Backend.Settings["sample_rate"])
				assert.Equal(t, []string{"/music"}, cfg.Library.Dirs)
				assert.Equal(t, []string{".mp3"}, cfg.Library.Extensions)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "defaults fill the gaps",
			yaml: "library:\n  dirs: [\"/music\"]\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 100, cfg.Engine.MonitorIntervalMs)
				assert.Equal(t, "beep", cfg.Backend.Type)
			},
		},
		{
			name:    "interval below minimum",
			yaml:    "engine:\n  monitor_interval_ms: 5\n",
			wantErr: true,
		},
		{
			name:    "interval above maximum",
			yaml:    "engine:\n  monitor_interval_ms: 5000\n",
			wantErr: true,
		},
		{
			name:    "volume above range",
			yaml:    "engine:\n  default_volume: 1.5\n",
			wantErr: true,
		},
		{
			name:    "extension without dot",
			yaml:    "library:\n  extensions: [\"mp3\"]\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "engine: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/tunebox.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TUNEBOX_LOG_LEVEL", "debug")
	t.Setenv("TUNEBOX_BACKEND", "beep")

	path := writeConfig(t, "logging:\n  level: info\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "beep", cfg.Backend.Type)
}
