package hamilton

import (
	"math"

	"github.com/cstarkjp/GME/internal/trace"
)

// RaySystem evaluates Hamilton's equations for the erosion model. The
// state layout is [rx, rz, px, pz]; rays carry px > 0 and pz < 0, and
// pdot_z vanishes identically because φ depends on rx alone.
type RaySystem struct {
	m ModelSpec
}

func (m ModelSpec) RaySystem() *RaySystem { return &RaySystem{m: m} }

func (s *RaySystem) Dim() int { return 4 }

func (s *RaySystem) Derive(y trace.State, t float64) trace.State {
	rx, px, pz := y[trace.IRx], y[trace.IPx], y[trace.IPz]
	m := s.m

	phi := m.Varphi(rx)
	dphi := m.DVarphi(rx)
	p2 := px*px + pz*pz

	var rdotx, rdotz, pdotx float64
	if m.BetaType == BetaTan {
		// H = ½ φ² px^{2η} (pz²)^{-η} (px²+pz²)
		pxPow := math.Pow(px, 2*m.Eta-1)
		pzPow := math.Pow(pz*pz, -m.Eta)
		rdotx = phi * phi * pxPow * pzPow * (m.Eta*p2 + px*px)
		rdotz = phi * phi * pxPow * px * pzPow / pz * (pz*pz - m.Eta*p2)
		pdotx = -phi * dphi * pxPow * px * pzPow * p2
	} else {
		// H = ½ φ² px^{2η} (px²+pz²)^{1-η}
		pxPow := math.Pow(px, 2*m.Eta-1)
		pPow := math.Pow(p2, -m.Eta)
		rdotx = phi * phi * pxPow * pPow * (m.Eta*pz*pz + px*px)
		rdotz = -phi * phi * pxPow * px * pz * (m.Eta - 1) * pPow
		pdotx = -phi * dphi * pxPow * px * math.Pow(p2, 1-m.Eta)
	}

	return trace.State{rdotx, rdotz, pdotx, 0}
}

// Fstar evaluates the fundamental function F*(r, p). Rays are normalized
// to F* = 1, equivalently H = ½.
func (m ModelSpec) Fstar(rx, px, pz float64) float64 {
	phi := m.Varphi(rx)
	p2 := px*px + pz*pz
	if m.BetaType == BetaTan {
		return phi * math.Pow(px, m.Eta) * math.Pow(pz*pz, -m.Eta/2) * math.Sqrt(p2)
	}
	return phi * math.Pow(px, m.Eta) * math.Pow(p2, (1-m.Eta)/2)
}

// Hamiltonian evaluates H(r, p) = ½ F*².
func (m ModelSpec) Hamiltonian(y trace.State) float64 {
	f := m.Fstar(y[trace.IRx], y[trace.IPx], y[trace.IPz])
	return f * f / 2
}

// Xiv evaluates the vertical erosion rate ξ↓ = pz / (px² + pz²).
func Xiv(y trace.State) float64 {
	px, pz := y[trace.IPx], y[trace.IPz]
	return pz / (px*px + pz*pz)
}

// TanBeta evaluates the surface tilt tan β = -px/pz at a ray state.
func TanBeta(y trace.State) float64 {
	return -y[trace.IPx] / y[trace.IPz]
}

// GeodesicSystem is the auxiliary ODE family: the same Hamiltonian flow
// reparametrized to unit front speed, so trajectories trace geodesics of
// the erosion metric by arc length rather than by time. It shares the
// [rx, rz, px, pz] state layout and is typically integrated with a
// different method than the ray family.
type GeodesicSystem struct {
	rays *RaySystem
}

func (m ModelSpec) GeodesicSystem() *GeodesicSystem {
	return &GeodesicSystem{rays: m.RaySystem()}
}

func (g *GeodesicSystem) Dim() int { return 4 }

func (g *GeodesicSystem) Derive(y trace.State, t float64) trace.State {
	d := g.rays.Derive(y, t)
	speed := math.Hypot(d[trace.IRx], d[trace.IRz])
	if speed == 0 {
		return trace.State{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	}
	for i := range d {
		d[i] /= speed
	}
	return d
}
