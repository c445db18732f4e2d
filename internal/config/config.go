// Package config loads and validates job configuration files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cstarkjp/GME/internal/family"
	"github.com/cstarkjp/GME/internal/hamilton"
)

const (
	DefaultEndTime    = 0.04
	DefaultRays       = 101
	DefaultIsochrones = 30
	DefaultTolerance  = 1e-5
	DefaultOrder      = 3
	DefaultDense      = 200
)

// Config is the resolved job configuration: plain values only, no
// behavior. It is constructed once per job, validated fail-fast, and
// passed by reference to every component.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Solve   SolveConfig   `yaml:"solve"`
	Resolve ResolveConfig `yaml:"resolve"`
}

type ModelConfig struct {
	Eta     float64 `yaml:"eta"`
	Mu      float64 `yaml:"mu"`
	Beta    string  `yaml:"beta"`
	Varphi  string  `yaml:"varphi"`
	IBC     string  `yaml:"ibc"`
	Varphi0 float64 `yaml:"varphi0"`
	Epsilon float64 `yaml:"epsilon"`
	X1      float64 `yaml:"x1"`
	H0      float64 `yaml:"h0"`
	KappaH  float64 `yaml:"kappa_h"`
	Xiv0    float64 `yaml:"xiv0"`
	Chi     float64 `yaml:"chi"`
	XSigma  float64 `yaml:"x_sigma"`
	XH      float64 `yaml:"x_h"`
}

type SolveConfig struct {
	Method         string  `yaml:"method"`
	GeodesicMethod string  `yaml:"geodesic_method"`
	EndTime        float64 `yaml:"end_time"`
	Rays           int     `yaml:"rays"`
	Dt0            float64 `yaml:"dt0"`
	Tolerance      float64 `yaml:"tolerance"`

	DoProfile  bool `yaml:"do_profile"`
	DoCorner   bool `yaml:"do_corner"`
	DoBoundary bool `yaml:"do_boundary"`
	DoGeodesic bool `yaml:"do_geodesic"`

	CornerX     float64 `yaml:"corner_x"`
	CornerSlope float64 `yaml:"corner_slope"`
	FanRays     int     `yaml:"fan_rays"`

	Segments []family.Segment `yaml:"segments"`
}

type ResolveConfig struct {
	Isochrones int     `yaml:"isochrones"`
	TMax       float64 `yaml:"t_max"`
	MaxFrac    float64 `yaml:"max_frac"`
	Tolerance  float64 `yaml:"tolerance"`
	Eliminate  bool    `yaml:"eliminate_caustics"`
	KeepUpper  bool    `yaml:"keep_upper"`
	Order      int     `yaml:"order"`
	Dense      int     `yaml:"dense"`
}

func DefaultConfig() *Config {
	m := hamilton.Default()
	return &Config{
		Model: ModelConfig{
			Eta:     m.Eta,
			Mu:      m.Mu,
			Beta:    m.BetaType,
			Varphi:  m.VarphiType,
			IBC:     m.IBCType,
			Varphi0: m.Varphi0,
			Epsilon: m.Epsilon,
			X1:      m.X1,
			H0:      m.H0,
			KappaH:  m.KappaH,
			Xiv0:    m.Xiv0,
			Chi:     m.Chi,
			XSigma:  m.XSigma,
			XH:      m.XH,
		},
		Solve: SolveConfig{
			Method:         "dopri5",
			GeodesicMethod: "rk4",
			EndTime:        DefaultEndTime,
			Rays:           DefaultRays,
			DoProfile:      true,
			DoBoundary:     true,
			CornerX:        m.X1 / 4,
			FanRays:        17,
		},
		Resolve: ResolveConfig{
			Isochrones: DefaultIsochrones,
			MaxFrac:    0.95,
			Tolerance:  DefaultTolerance,
			Eliminate:  true,
			Order:      DefaultOrder,
			Dense:      DefaultDense,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ModelSpec builds the frozen model parameter set from the configuration.
// The "rampflat" spelling is accepted as an alias for "ramp-flat".
func (c *Config) ModelSpec() hamilton.ModelSpec {
	varphi := c.Model.Varphi
	if varphi == "rampflat" {
		varphi = hamilton.VarphiRampFlat
	}
	return hamilton.ModelSpec{
		Eta:        c.Model.Eta,
		Mu:         c.Model.Mu,
		BetaType:   c.Model.Beta,
		VarphiType: varphi,
		IBCType:    c.Model.IBC,
		Varphi0:    c.Model.Varphi0,
		Epsilon:    c.Model.Epsilon,
		X1:         c.Model.X1,
		H0:         c.Model.H0,
		KappaH:     c.Model.KappaH,
		Xiv0:       c.Model.Xiv0,
		Chi:        c.Model.Chi,
		XSigma:     c.Model.XSigma,
		XH:         c.Model.XH,
	}
}

// Validate checks the full configuration before any integration begins.
func (c *Config) Validate() error {
	if err := c.ModelSpec().Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if c.Solve.EndTime <= 0 {
		return fmt.Errorf("solve: end_time must be positive, got %g", c.Solve.EndTime)
	}
	if c.Solve.Rays < 2 {
		return fmt.Errorf("solve: need at least 2 rays, got %d", c.Solve.Rays)
	}
	if c.Solve.Tolerance < 0 {
		return fmt.Errorf("solve: tolerance must be non-negative, got %g", c.Solve.Tolerance)
	}
	if !c.Solve.DoProfile && !c.Solve.DoCorner && !c.Solve.DoBoundary {
		return fmt.Errorf("solve: no regime enabled")
	}
	if c.Solve.DoCorner {
		if c.Solve.CornerX <= 0 || c.Solve.CornerX >= c.Model.X1 {
			return fmt.Errorf("solve: corner_x must lie inside (0, x1), got %g", c.Solve.CornerX)
		}
		if c.Solve.FanRays < 2 {
			return fmt.Errorf("solve: need at least 2 fan rays, got %d", c.Solve.FanRays)
		}
	}
	if c.Resolve.Isochrones < 1 {
		return fmt.Errorf("resolve: need at least 1 isochrone, got %d", c.Resolve.Isochrones)
	}
	if c.Resolve.TMax < 0 || c.Resolve.TMax > c.Solve.EndTime {
		return fmt.Errorf("resolve: t_max must lie in [0, end_time], got %g", c.Resolve.TMax)
	}
	if c.Resolve.Tolerance < 0 {
		return fmt.Errorf("resolve: tolerance must be non-negative, got %g", c.Resolve.Tolerance)
	}
	if c.Resolve.Order < 1 || c.Resolve.Order > 4 {
		return fmt.Errorf("resolve: order must lie in [1, 4], got %d", c.Resolve.Order)
	}
	for i, seg := range c.Solve.Segments {
		if seg.Fraction <= 0 {
			return fmt.Errorf("solve: segment %d fraction must be positive, got %g", i, seg.Fraction)
		}
		if seg.Rate <= 0 {
			return fmt.Errorf("solve: segment %d rate must be positive, got %g", i, seg.Rate)
		}
	}
	return nil
}
