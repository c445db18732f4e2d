// Package job orchestrates one solve request end to end: regime
// families, isochrone resolution, knickpoint tracking, and composite
// assembly, all against a single validated configuration.
package job

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/config"
	"github.com/cstarkjp/GME/internal/family"
	"github.com/cstarkjp/GME/internal/integrate"
	"github.com/cstarkjp/GME/internal/knick"
	"github.com/cstarkjp/GME/internal/resolve"
	"github.com/cstarkjp/GME/internal/trace"
)

// Event reports solve progress to an optional observer. Safe-for-
// concurrent delivery is the runner's responsibility; handlers should be
// quick.
type Event struct {
	Regime string
	Done   int
	Total  int
}

// Runner executes solve jobs for one configuration.
type Runner struct {
	Cfg      *config.Config
	Logger   *zap.Logger
	OnEvent  func(Event)
	Geodesic bool
}

func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Cfg: cfg, Logger: logger}
}

// Run validates the configuration fail-fast, solves every enabled regime
// concurrently, and assembles the combined solution. A fatal error aborts
// the job without partial outputs.
func (r *Runner) Run(ctx context.Context) (*composite.Solution, error) {
	cfg := r.Cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var solvers []func(context.Context) (composite.Part, error)
	if cfg.Solve.DoProfile {
		solvers = append(solvers, r.regimeSolver(family.Spec{
			Kind: trace.RegimeInitialProfile,
			N:    cfg.Solve.Rays,
		}))
	}
	if cfg.Solve.DoCorner {
		solvers = append(solvers, r.regimeSolver(family.Spec{
			Kind:        trace.RegimeInitialCorner,
			N:           cfg.Solve.Rays,
			CornerX:     cfg.Solve.CornerX,
			CornerSlope: cfg.Solve.CornerSlope,
			FanN:        cfg.Solve.FanRays,
		}))
	}
	if cfg.Solve.DoBoundary {
		spec := family.Spec{
			Kind: trace.RegimeVelocityBoundary,
			N:    cfg.Solve.Rays,
		}
		if len(cfg.Solve.Segments) > 0 {
			spec.Kind = trace.RegimeVariableVelocity
			spec.Segments = cfg.Solve.Segments
		}
		solvers = append(solvers, r.regimeSolver(spec))
	}

	sol, err := composite.Solve(ctx, solvers...)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("job complete",
		zap.Int("families", len(sol.Families)),
		zap.Int("isochrones", len(sol.Isochrones)),
		zap.Int("knickpoints", len(sol.Knickpoints)))
	return sol, nil
}

func (r *Runner) regimeSolver(spec family.Spec) func(context.Context) (composite.Part, error) {
	cfg := r.Cfg
	return func(ctx context.Context) (composite.Part, error) {
		gen := family.NewGenerator(cfg.ModelSpec(), cfg.Solve.Method)
		gen.Logger = r.Logger
		gen.Opts = integrate.Options{
			Dt0: cfg.Solve.Dt0,
			Tol: cfg.Solve.Tolerance,
		}
		if cfg.Solve.GeodesicMethod != "" {
			gen.GeodesicMethod = cfg.Solve.GeodesicMethod
		}
		if r.OnEvent != nil {
			gen.Progress = func(done, total int) {
				r.OnEvent(Event{Regime: spec.Kind.String(), Done: done, Total: total})
			}
		}

		fam, err := gen.Generate(ctx, spec, cfg.Solve.EndTime)
		if err != nil {
			return composite.Part{}, err
		}
		var geo *trace.RayFamily
		if r.Geodesic || cfg.Solve.DoGeodesic {
			// A diagnostic companion; errors here do not fail the regime.
			g, gerr := gen.GenerateGeodesic(ctx, spec, cfg.Solve.EndTime)
			if gerr != nil {
				r.Logger.Warn("geodesic family failed", zap.Error(gerr))
			} else {
				geo = g
			}
		}

		params := r.resolveParams()
		isochrones, err := resolve.Isochrones(fam, params)
		if err != nil {
			return composite.Part{}, err
		}

		times, err := resolve.TargetTimes(fam, params)
		if err != nil {
			return composite.Part{}, err
		}
		kps, err := knick.Track(fam, knickSeeds(cfg, spec, fam), times)
		if err != nil {
			return composite.Part{}, err
		}

		return composite.Part{Family: fam, Geodesic: geo, Isochrones: isochrones, Knickpoints: kps}, nil
	}
}

func (r *Runner) resolveParams() resolve.Params {
	rc := r.Cfg.Resolve
	p := resolve.Params{
		Count:     rc.Isochrones,
		TMax:      rc.TMax,
		MaxFrac:   rc.MaxFrac,
		Window:    rc.Tolerance,
		Tol:       rc.Tolerance,
		Order:     rc.Order,
		Dense:     rc.Dense,
		KeepUpper: rc.KeepUpper,
	}
	if !rc.Eliminate {
		// Tolerance zero is the documented diagnostic mode: raw folded
		// point sets, no elimination. The matching window stays in force
		// so the raw sets superset the eliminated ones.
		p.Tol = 0
	}
	return p
}

// knickSeeds derives the discontinuities a regime is known to carry: the
// embedded corner for the corner regime, and one slope break per
// velocity-law switch for the variable boundary regime.
func knickSeeds(cfg *config.Config, spec family.Spec, fam *trace.RayFamily) []knick.Seed {
	switch spec.Kind {
	case trace.RegimeInitialCorner:
		// The corner fan follows the N profile rays; the break is
		// bounded by the fan's extreme members.
		first := spec.N
		last := spec.N + spec.FanN - 1
		if last >= len(fam.Trajectories) {
			return nil
		}
		return []knick.Seed{{SeedTime: 0, Left: first, Right: last}}

	case trace.RegimeVariableVelocity:
		total := 0.0
		for _, seg := range spec.Segments {
			total += seg.Fraction
		}
		var seeds []knick.Seed
		change := 0.0
		for _, seg := range spec.Segments[:len(spec.Segments)-1] {
			change += seg.Fraction / total * cfg.Solve.EndTime
			// Bounding rays: last seeded strictly before the switch and
			// first seeded at or after it. Segment intervals are
			// half-open, so a ray seeded exactly at the change time
			// already carries the later rate and sits right of the break.
			pos := change / cfg.Solve.EndTime * float64(spec.N-1)
			i := int(math.Floor(pos))
			if float64(i) == pos {
				i--
			}
			if i < 0 || i+1 >= len(fam.Trajectories) {
				continue
			}
			seeds = append(seeds, knick.Seed{SeedTime: change, Left: i, Right: i + 1})
		}
		return seeds
	}
	return nil
}
