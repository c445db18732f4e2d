package resolve

import (
	"fmt"

	"github.com/cstarkjp/GME/internal/trace"
)

// Params configure isochrone resolution for one family.
type Params struct {
	// Count is the number of isochrones; target times are spaced evenly
	// over [0, TMax]. Times, when set, overrides the spacing entirely.
	Count int
	Times []float64

	// TMax bounds the target times. When zero, the bound is MaxFrac of
	// the family's own maximum reached time (MaxFrac defaults to 1).
	TMax    float64
	MaxFrac float64

	// Window is the absolute time-matching window: trajectory endpoints
	// within it are clamped onto the target time. It applies whether or
	// not elimination runs, so the raw point set is always a superset of
	// the eliminated one.
	Window float64

	// Tol gates caustic elimination; exactly zero returns raw folded
	// point sets as a diagnostic.
	Tol float64

	// Order is the smoothing interpolant order (1–4, default 3); Dense
	// is the fitted curve's sample count, 0 for points only.
	Order int
	Dense int

	// KeepUpper inverts the fold-survival polarity for regimes where the
	// advancing branch is the upper one.
	KeepUpper bool
}

func (p Params) withDefaults() Params {
	if p.MaxFrac <= 0 || p.MaxFrac > 1 {
		p.MaxFrac = 1
	}
	if p.Order <= 0 {
		p.Order = 3
	}
	return p
}

func (p Params) validate() error {
	if len(p.Times) == 0 && p.Count < 1 {
		return fmt.Errorf("isochrone count must be at least 1, got %d", p.Count)
	}
	for i := 1; i < len(p.Times); i++ {
		if p.Times[i] <= p.Times[i-1] {
			return fmt.Errorf("explicit target times must be strictly increasing")
		}
	}
	if len(p.Times) > 0 && p.Times[0] < 0 {
		return fmt.Errorf("target times must be non-negative")
	}
	if p.Tol < 0 {
		return fmt.Errorf("resolution tolerance must be non-negative, got %g", p.Tol)
	}
	if p.Window < 0 {
		return fmt.Errorf("time-matching window must be non-negative, got %g", p.Window)
	}
	if p.Order > 4 {
		return fmt.Errorf("interpolant order must be at most 4, got %d", p.Order)
	}
	return nil
}

// TargetTimes computes the resolved target times for a family: strictly
// increasing and bounded by [0, t_max].
func TargetTimes(fam *trace.RayFamily, p Params) ([]float64, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(p.Times) > 0 {
		out := make([]float64, len(p.Times))
		copy(out, p.Times)
		return out, nil
	}

	tMax := p.TMax
	if tMax <= 0 {
		tMax = p.MaxFrac * fam.TMax()
	}
	times := make([]float64, p.Count)
	if p.Count == 1 {
		times[0] = tMax
		return times, nil
	}
	for i := range times {
		times[i] = tMax * float64(i) / float64(p.Count-1)
	}
	return times, nil
}

// Isochrones reconstructs the family's surface at every target time. A
// target beyond every trajectory's reach yields an explicitly empty
// isochrone, not an error.
func Isochrones(fam *trace.RayFamily, p Params) ([]trace.Isochrone, error) {
	p = p.withDefaults()
	times, err := TargetTimes(fam, p)
	if err != nil {
		return nil, err
	}

	out := make([]trace.Isochrone, len(times))
	for i, t := range times {
		out[i] = resolveOne(fam, t, p)
	}
	return out, nil
}

// At resolves a single isochrone at time t.
func At(fam *trace.RayFamily, t float64, p Params) trace.Isochrone {
	return resolveOne(fam, t, p.withDefaults())
}

type point struct {
	x, z, slope float64
}

func resolveOne(fam *trace.RayFamily, t float64, p Params) trace.Isochrone {
	pts := make([]point, 0, len(fam.Trajectories))
	for i := range fam.Trajectories {
		y, ok := sampleAt(&fam.Trajectories[i], t, p.Window)
		if !ok {
			continue
		}
		pts = append(pts, point{
			x:     y[trace.IRx],
			z:     y[trace.IRz],
			slope: -y[trace.IPx] / y[trace.IPz],
		})
	}

	if p.Tol > 0 {
		pts = eliminateCaustics(pts, p.KeepUpper)
	}

	iso := trace.Isochrone{T: t}
	for _, pt := range pts {
		iso.X = append(iso.X, pt.x)
		iso.Z = append(iso.Z, pt.z)
		iso.Slope = append(iso.Slope, pt.slope)
	}

	if p.Dense > 1 && len(pts) > p.Order+1 {
		iso.CurveX, iso.CurveZ = fitCurve(iso.X, iso.Z, p.Order, p.Dense)
	}
	return iso
}

// sampleAt interpolates a trajectory at t; endpoints within the matching
// window are clamped onto the target time. Trajectories that neither
// straddle nor come within the window of t contribute no point.
func sampleAt(tr *trace.Trajectory, t, window float64) (trace.State, bool) {
	if tr.Len() == 0 {
		return nil, false
	}
	if y, ok := tr.At(t); ok {
		return y, true
	}
	if t > tr.Times[tr.Len()-1] && t-tr.Times[tr.Len()-1] <= window {
		return tr.States[tr.Len()-1].Clone(), true
	}
	if t < tr.Times[0] && tr.Times[0]-t <= window {
		return tr.States[0].Clone(), true
	}
	return nil, false
}
