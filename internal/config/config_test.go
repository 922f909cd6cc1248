package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/prism/pkg/bounce"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Bounces)
	assert.Equal(t, 200.0, cfg.Far)
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, 20.0, cfg.OrbitRadiusX)
	assert.Equal(t, 10.0, cfg.OrbitRadiusY)
	assert.Equal(t, -100.0, cfg.OrbitDepth)
	assert.Equal(t, 0.6, cfg.OrbitSpeed)
	assert.Equal(t, bounce.Config{MaxBounces: 8, FarDistance: 200}, cfg.Tracer())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PRISM_BOUNCES", "3")
	t.Setenv("PRISM_FAR", "12.5")
	t.Setenv("PRISM_LOG_LEVEL", "debug")
	t.Setenv("PRISM_ORBIT_DEPTH", "-40")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, bounce.Config{MaxBounces: 3, FarDistance: 12.5}, cfg.Tracer())
	assert.Equal(t, -40.0, cfg.OrbitDepth)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
		is               error
	}{
		{"zero bounces", "PRISM_BOUNCES", "0", bounce.ErrInvalidMaxBounces},
		{"negative far", "PRISM_FAR", "-1", bounce.ErrInvalidFarDistance},
		{"not a number", "PRISM_BOUNCES", "many", nil},
		{"zero fps", "PRISM_FPS", "0", nil},
		{"unknown level", "PRISM_LOG_LEVEL", "loud", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}
