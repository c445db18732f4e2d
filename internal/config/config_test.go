package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstarkjp/GME/internal/family"
	"github.com/cstarkjp/GME/internal/hamilton"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateFailFast(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero eta", func(c *Config) { c.Model.Eta = 0 }},
		{"bad slope law", func(c *Config) { c.Model.Beta = "cos" }},
		{"zero end time", func(c *Config) { c.Solve.EndTime = 0 }},
		{"one ray", func(c *Config) { c.Solve.Rays = 1 }},
		{"negative tolerance", func(c *Config) { c.Solve.Tolerance = -1 }},
		{"no regime", func(c *Config) {
			c.Solve.DoProfile = false
			c.Solve.DoCorner = false
			c.Solve.DoBoundary = false
		}},
		{"corner outside domain", func(c *Config) {
			c.Solve.DoCorner = true
			c.Solve.CornerX = 2
		}},
		{"zero isochrones", func(c *Config) { c.Resolve.Isochrones = 0 }},
		{"t_max beyond horizon", func(c *Config) { c.Resolve.TMax = 1 }},
		{"order out of range", func(c *Config) { c.Resolve.Order = 9 }},
		{"bad segment fraction", func(c *Config) {
			c.Solve.Segments = []family.Segment{{Fraction: 0, Rate: 30}}
		}},
		{"bad segment rate", func(c *Config) {
			c.Solve.Segments = []family.Segment{{Fraction: 0.5, Rate: -1}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Eta = 1.0
	cfg.Solve.Segments = []family.Segment{
		{Fraction: 0.5, Rate: 31},
		{Fraction: 0.5, Rate: 30},
	}

	path := filepath.Join(t.TempDir(), "gme.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestModelSpecMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Eta = 0.75
	cfg.Model.Beta = "tan"
	cfg.Model.IBC = "convex-up"

	spec := cfg.ModelSpec()
	assert.Equal(t, 0.75, spec.Eta)
	assert.Equal(t, "tan", spec.BetaType)
	assert.Equal(t, "convex-up", spec.IBCType)
	assert.Equal(t, cfg.Model.Varphi0, spec.Varphi0)
	assert.Equal(t, cfg.Model.Xiv0, spec.Xiv0)
	require.NoError(t, spec.Validate())
}

func TestModelSpecVarphiAlias(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Varphi = "rampflat"

	spec := cfg.ModelSpec()
	assert.Equal(t, hamilton.VarphiRampFlat, spec.VarphiType)
	require.NoError(t, spec.Validate())
}
