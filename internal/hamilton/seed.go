package hamilton

import (
	"fmt"
	"math"

	"github.com/cstarkjp/GME/internal/trace"
)

// PxFromXiv solves F*(rx, px, pz) = 1 for the horizontal slowness px > 0
// given the vertical component pz. F* is strictly increasing in px, so
// the root is unique; it is located by bracket expansion and bisection,
// which keeps seeding bit-for-bit deterministic.
func (m ModelSpec) PxFromXiv(rx, pz float64) (float64, error) {
	f := func(px float64) float64 {
		return m.Fstar(rx, px, pz) - 1
	}

	lo, hi := 1e-12, 1.0
	for iter := 0; f(hi) < 0; iter++ {
		if iter > 200 {
			return 0, fmt.Errorf("px root bracket expansion failed at rx=%g, pz=%g", rx, pz)
		}
		hi *= 2
	}
	if f(lo) > 0 {
		return 0, fmt.Errorf("px root not bracketed at rx=%g, pz=%g", rx, pz)
	}

	for i := 0; i < 100; i++ {
		mid := 0.5 * (lo + hi)
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}

// SeedBoundary constructs the initial ray state for a ray emitted by the
// velocity boundary at seed time t with vertical erosion rate xiv. The
// boundary sits at rx = 0 and has been lowered by xiv·t; the seed
// momentum encodes the instantaneous boundary velocity via pz = -1/ξ↓.
func (m ModelSpec) SeedBoundary(t, xiv float64) (trace.State, error) {
	if xiv <= 0 {
		return nil, fmt.Errorf("boundary erosion rate must be positive, got %g", xiv)
	}
	pz := -1 / xiv
	px, err := m.PxFromXiv(0, pz)
	if err != nil {
		return nil, err
	}
	return trace.State{0, -xiv * t, px, pz}, nil
}

// SeedSlope constructs the initial ray state at a surface point (x, z)
// with tilt tan β. Momentum magnitude follows p = 1/ξ⊥, which diverges as
// the surface flattens; a vanishing slope is reported as an error so the
// caller can skip or fail the ray.
func (m ModelSpec) SeedSlope(x, z, tanBeta float64) (trace.State, error) {
	if math.Abs(tanBeta) < 1e-14 {
		return nil, fmt.Errorf("singular seed momentum: zero surface slope at x=%g", x)
	}
	hyp := math.Sqrt(1 + tanBeta*tanBeta)
	sinB := tanBeta / hyp
	cosB := 1 / hyp

	phi := m.Varphi(x)
	var p float64
	if m.BetaType == BetaTan {
		p = 1 / (phi * math.Pow(math.Abs(tanBeta), m.Eta))
	} else {
		p = 1 / (phi * math.Pow(math.Abs(sinB), m.Eta))
	}
	return trace.State{x, z, p * sinB, -p * cosB}, nil
}

// SeedProfile constructs the initial ray state for the surface point at
// horizontal position x on the configured initial profile.
func (m ModelSpec) SeedProfile(x float64) (trace.State, error) {
	h, gradH := m.Profile(x)
	return m.SeedSlope(x, h, gradH)
}
