// Package composite merges independently solved boundary-condition
// regimes into one coherent time history.
package composite

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cstarkjp/GME/internal/knick"
	"github.com/cstarkjp/GME/internal/trace"
)

// Part is one regime's solved output: its ray family plus the derived
// isochrones and knickpoints.
type Part struct {
	Family      *trace.RayFamily
	Geodesic    *trace.RayFamily // optional companion family
	Isochrones  []trace.Isochrone
	Knickpoints []knick.Knickpoint
}

// Solution is the combined time history across regimes. Families keep
// their input order; isochrones are globally time-ordered; knickpoints
// are seed-time-ordered. All slices are read-only snapshots.
type Solution struct {
	Fingerprint string
	TEnd        float64

	Families    []*trace.RayFamily
	Isochrones  []trace.Isochrone
	Knickpoints []knick.Knickpoint
}

// Assemble validates that all parts share one model fingerprint and time
// normalization, then merges them. Mismatched inputs are a configuration
// error surfaced before any merging happens.
func Assemble(parts ...Part) (*Solution, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("composite: no parts to assemble")
	}
	for i, p := range parts {
		if p.Family == nil {
			return nil, fmt.Errorf("composite: part %d has no ray family", i)
		}
	}

	ref := parts[0].Family
	for _, p := range parts[1:] {
		if p.Family.Fingerprint != ref.Fingerprint {
			return nil, fmt.Errorf("composite: %w: %q (regime %s) vs %q (regime %s)",
				trace.ErrModelMismatch,
				ref.Fingerprint, ref.Regime, p.Family.Fingerprint, p.Family.Regime)
		}
		if p.Family.TEnd != ref.TEnd {
			return nil, fmt.Errorf("composite: %w: end time %g (regime %s) vs %g (regime %s)",
				trace.ErrModelMismatch,
				ref.TEnd, ref.Regime, p.Family.TEnd, p.Family.Regime)
		}
	}

	sol := &Solution{
		Fingerprint: ref.Fingerprint,
		TEnd:        ref.TEnd,
	}
	for _, p := range parts {
		sol.Families = append(sol.Families, p.Family)
		if p.Geodesic != nil {
			sol.Families = append(sol.Families, p.Geodesic)
		}
		sol.Isochrones = append(sol.Isochrones, p.Isochrones...)
		sol.Knickpoints = append(sol.Knickpoints, p.Knickpoints...)
	}

	sort.SliceStable(sol.Isochrones, func(a, b int) bool {
		return sol.Isochrones[a].T < sol.Isochrones[b].T
	})
	sort.SliceStable(sol.Knickpoints, func(a, b int) bool {
		return sol.Knickpoints[a].SeedTime < sol.Knickpoints[b].SeedTime
	})
	return sol, nil
}

// Solve runs the regime solvers concurrently and assembles their parts.
// A fatal error in any regime aborts the job without partial outputs;
// part order matches solver order regardless of completion order.
func Solve(ctx context.Context, solvers ...func(context.Context) (Part, error)) (*Solution, error) {
	parts := make([]Part, len(solvers))
	g, ctx := errgroup.WithContext(ctx)
	for i, fn := range solvers {
		i, fn := i, fn
		g.Go(func() error {
			p, err := fn(ctx)
			if err != nil {
				return err
			}
			parts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Assemble(parts...)
}
