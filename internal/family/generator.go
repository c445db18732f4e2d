package family

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cstarkjp/GME/internal/hamilton"
	"github.com/cstarkjp/GME/internal/integrate"
	"github.com/cstarkjp/GME/internal/trace"
)

// Generator integrates ray families for one frozen model. Method names
// select the stepper per ODE family; each worker holds its own stepper
// instance so scratch buffers are never shared.
type Generator struct {
	Model          hamilton.ModelSpec
	Method         string
	GeodesicMethod string
	Opts           integrate.Options
	Workers        int
	Logger         *zap.Logger

	// Progress, when set, is invoked after each completed ray with the
	// running completion count; it must be safe for concurrent use.
	Progress func(done, total int)
}

func NewGenerator(m hamilton.ModelSpec, method string) *Generator {
	return &Generator{
		Model:          m,
		Method:         method,
		GeodesicMethod: method,
		Workers:        runtime.NumCPU(),
		Logger:         zap.NewNop(),
	}
}

// Generate seeds the regime and integrates every ray of the primary
// Hamiltonian family up to tEnd.
func (g *Generator) Generate(ctx context.Context, spec Spec, tEnd float64) (*trace.RayFamily, error) {
	return g.run(ctx, spec, tEnd, g.Method, func() trace.System { return g.Model.RaySystem() })
}

// GenerateGeodesic integrates the auxiliary geodesic family from the same
// seeds, with its own method selection.
func (g *Generator) GenerateGeodesic(ctx context.Context, spec Spec, tEnd float64) (*trace.RayFamily, error) {
	fam, err := g.run(ctx, spec, tEnd, g.GeodesicMethod, func() trace.System { return g.Model.GeodesicSystem() })
	if fam != nil {
		fam.Name = fam.Name + "-geodesic"
	}
	return fam, err
}

func (g *Generator) run(ctx context.Context, spec Spec, tEnd float64, method string, newSys func() trace.System) (*trace.RayFamily, error) {
	seeds, err := spec.seeds(g.Model, tEnd)
	if err != nil {
		return nil, err
	}
	if _, err := integrate.New(method); err != nil {
		return nil, err
	}

	fam := &trace.RayFamily{
		Name:        spec.Kind.String(),
		Regime:      spec.Kind,
		Fingerprint: g.Model.Fingerprint(),
		TEnd:        tEnd,
	}

	trajs := make([]trace.Trajectory, len(seeds))
	errs := make([]error, len(seeds))

	workers := g.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(seeds) {
		workers = len(seeds)
	}

	jobs := make(chan int)
	var done atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			stepper, _ := integrate.New(method)
			sys := newSys()
			opts := g.Opts
			opts.Events = append(opts.Events[:len(opts.Events):len(opts.Events)], g.domainExit())
			for idx := range jobs {
				// Cancellation is checked only between rays; a ray in
				// flight always runs to completion.
				if ctx.Err() != nil {
					errs[idx] = ctx.Err()
					continue
				}
				trajs[idx], errs[idx] = g.traceRay(sys, stepper, seeds[idx], tEnd, opts)
				trajs[idx].Regime = spec.Kind
				if g.Progress != nil {
					g.Progress(int(done.Add(1)), len(seeds))
				}
			}
		}()
	}
	for i := range seeds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ok := 0
	for i := range seeds {
		fam.Trajectories = append(fam.Trajectories, trajs[i])
		if errs[i] != nil {
			fam.Failures = append(fam.Failures, trace.RayFailure{Index: i, Err: errs[i]})
			g.Logger.Warn("ray integration failed",
				zap.String("regime", spec.Kind.String()),
				zap.Int("ray", i),
				zap.Float64("seed_time", seeds[i].t0),
				zap.Error(errs[i]))
			continue
		}
		ok++
	}

	g.Logger.Info("ray family complete",
		zap.String("regime", spec.Kind.String()),
		zap.Int("rays", len(seeds)),
		zap.Int("failed", len(fam.Failures)))

	if ok == 0 {
		return fam, &trace.IntegrationError{Time: 0, Step: 0, Wrapped: trace.ErrNoRays}
	}
	return fam, nil
}

func (g *Generator) traceRay(sys trace.System, stepper trace.Integrator, sd seed, tEnd float64, opts integrate.Options) (trace.Trajectory, error) {
	if sd.err != nil {
		return trace.Trajectory{SeedTime: sd.t0}, sd.err
	}
	return integrate.Trace(sys, sd.y0, sd.t0, tEnd, stepper, opts)
}

// domainExit terminates a ray once it leaves the model domain or its
// momentum degenerates (px ≤ 0 precedes the singular-derivative blow-up).
func (g *Generator) domainExit() integrate.Event {
	x1 := g.Model.X1
	return func(y trace.State, t float64) bool {
		return y[trace.IRx] > x1 || y[trace.IPx] <= 0
	}
}
