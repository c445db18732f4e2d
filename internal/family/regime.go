package family

import (
	"fmt"

	"github.com/cstarkjp/GME/internal/hamilton"
	"github.com/cstarkjp/GME/internal/trace"
)

// Segment is one velocity-boundary segment: a share of the seeding
// timeline and the vertical erosion rate active over it. Segment switches
// are hard discontinuities: a ray seeded exactly at a change time uses
// the later segment's rate, with no interpolation across the switch.
type Segment struct {
	Fraction float64 `yaml:"fraction"`
	Rate     float64 `yaml:"rate"`
}

// Spec is the tagged regime variant. Kind selects the seeding strategy;
// the remaining fields apply only to the kinds that read them.
type Spec struct {
	Kind trace.Regime
	N    int // seeding resolution along the profile or boundary timeline

	// corner regime
	CornerX     float64
	CornerSlope float64 // right-side slope at the corner
	FanN        int

	// variable-velocity regime
	Segments []Segment
}

type seed struct {
	t0 float64
	y0 trace.State
	// err marks a seed that could not be constructed (e.g. singular
	// momentum on a flat surface); the ray is recorded as failed.
	err error
}

func (s Spec) validate() error {
	if s.N < 2 {
		return fmt.Errorf("regime %s: need at least 2 rays, got %d", s.Kind, s.N)
	}
	switch s.Kind {
	case trace.RegimeInitialCorner:
		if s.FanN < 2 {
			return fmt.Errorf("corner regime: need at least 2 fan rays, got %d", s.FanN)
		}
	case trace.RegimeVariableVelocity:
		if len(s.Segments) == 0 {
			return fmt.Errorf("variable-velocity regime: no segments")
		}
		total := 0.0
		for i, seg := range s.Segments {
			if seg.Fraction <= 0 {
				return fmt.Errorf("segment %d: fraction must be positive, got %g", i, seg.Fraction)
			}
			if seg.Rate <= 0 {
				return fmt.Errorf("segment %d: rate must be positive, got %g", i, seg.Rate)
			}
			total += seg.Fraction
		}
		if total <= 0 {
			return fmt.Errorf("variable-velocity regime: zero total fraction")
		}
	}
	return nil
}

// rateAt resolves the active erosion rate for a ray seeded at time t.
// Fractions partition [0, tEnd]; the active segment switches exactly at
// each cumulative change time.
func (s Spec) rateAt(t, tEnd float64) float64 {
	total := 0.0
	for _, seg := range s.Segments {
		total += seg.Fraction
	}
	change := 0.0
	for i, seg := range s.Segments {
		change += seg.Fraction / total * tEnd
		if t < change || i == len(s.Segments)-1 {
			return seg.Rate
		}
	}
	return s.Segments[len(s.Segments)-1].Rate
}

func (s Spec) seeds(m hamilton.ModelSpec, tEnd float64) ([]seed, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	switch s.Kind {
	case trace.RegimeInitialProfile:
		return s.profileSeeds(m), nil
	case trace.RegimeInitialCorner:
		return append(s.profileSeeds(m), s.fanSeeds(m)...), nil
	case trace.RegimeVelocityBoundary:
		return s.boundarySeeds(m, tEnd, func(float64) float64 { return m.Xiv0 }), nil
	case trace.RegimeVariableVelocity:
		return s.boundarySeeds(m, tEnd, func(t float64) float64 { return s.rateAt(t, tEnd) }), nil
	}
	return nil, fmt.Errorf("unknown regime %v", s.Kind)
}

// profileSeeds samples the initial topographic surface at N positions.
func (s Spec) profileSeeds(m hamilton.ModelSpec) []seed {
	out := make([]seed, 0, s.N)
	for i := 0; i < s.N; i++ {
		x := m.X1 * float64(i) / float64(s.N-1)
		y0, err := m.SeedProfile(x)
		out = append(out, seed{t0: 0, y0: y0, err: err})
	}
	return out
}

// fanSeeds emits a fan of rays at the corner position with tilts spanning
// the profile slope on the left and the configured break slope on the
// right. The fan resolves the expanding wavefront a slope discontinuity
// generates.
func (s Spec) fanSeeds(m hamilton.ModelSpec) []seed {
	h, gradH := m.Profile(s.CornerX)
	left := gradH
	right := s.CornerSlope
	if right == 0 {
		right = 2 * left
	}

	out := make([]seed, 0, s.FanN)
	for i := 0; i < s.FanN; i++ {
		w := float64(i) / float64(s.FanN-1)
		tanBeta := left + w*(right-left)
		y0, err := m.SeedSlope(s.CornerX, h, tanBeta)
		out = append(out, seed{t0: 0, y0: y0, err: err})
	}
	return out
}

// boundarySeeds emits rays along the boundary's time axis at the
// configured resolution; each seed encodes the instantaneous boundary
// velocity at its seed time.
func (s Spec) boundarySeeds(m hamilton.ModelSpec, tEnd float64, rate func(t float64) float64) []seed {
	out := make([]seed, 0, s.N)
	for i := 0; i < s.N; i++ {
		t := tEnd * float64(i) / float64(s.N-1)
		y0, err := m.SeedBoundary(t, rate(t))
		out = append(out, seed{t0: t, y0: y0, err: err})
	}
	return out
}
