package integrate

import (
	"fmt"

	"github.com/cstarkjp/GME/internal/trace"
)

// Default numeric policy, used when the caller leaves Options fields unset.
const (
	DefaultTol      = 1e-8
	DefaultMaxSteps = 200000
)

// Event is a termination condition checked after each accepted step.
// Returning true stops the ray cleanly with the trajectory recorded so far.
type Event func(y trace.State, t float64) bool

// Options configure one ray's integration.
type Options struct {
	Dt0      float64
	Tol      float64
	MinDt    float64
	MaxSteps int
	Events   []Event
}

func (o Options) withDefaults(span float64) Options {
	if o.Tol <= 0 {
		o.Tol = DefaultTol
	}
	if o.Dt0 <= 0 {
		o.Dt0 = span / 200
	}
	if o.MinDt <= 0 {
		o.MinDt = span * 1e-12
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	return o
}

// Trace integrates one ray from y0 over [t0, t1] with the given method,
// producing a trajectory tagged with its seed. A seed beyond the horizon
// yields a zero-length trajectory, not a failure. On a stepper failure the
// partial trajectory up to the last valid state is returned alongside a
// *trace.IntegrationError.
func Trace(sys trace.System, y0 trace.State, t0, t1 float64, method trace.Integrator, opt Options) (trace.Trajectory, error) {
	tr := trace.Trajectory{SeedTime: t0}
	if len(y0) > trace.IRx {
		tr.SeedX = y0[trace.IRx]
	}
	if t0 > t1 {
		return tr, nil
	}

	if !y0.IsValid() {
		return tr, &trace.IntegrationError{Time: t0, Step: 0, Last: y0.Clone(), Wrapped: trace.ErrSingularDerivative}
	}

	opt = opt.withDefaults(t1 - t0)
	adaptive, isAdaptive := method.(trace.AdaptiveIntegrator)

	y := y0.Clone()
	t := t0
	dt := opt.Dt0

	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, y.Clone())

	for step := 1; t < t1; step++ {
		if step > opt.MaxSteps {
			return tr, &trace.IntegrationError{Time: t, Step: step, Last: y.Clone(), Wrapped: trace.ErrHorizonExceeded}
		}
		if dt < opt.MinDt {
			return tr, &trace.IntegrationError{Time: t, Step: step, Last: y.Clone(), Wrapped: trace.ErrStepTooSmall}
		}
		if t+dt > t1 {
			dt = t1 - t
		}

		var yNew trace.State
		if isAdaptive {
			accepted, dtUsed, dtNext, err := adaptive.StepAdaptive(sys, y, t, dt, opt.Tol)
			if err != nil {
				return tr, &trace.IntegrationError{Time: t, Step: step, Last: y.Clone(), Wrapped: err}
			}
			yNew = accepted
			t += dtUsed
			dt = dtNext
		} else {
			yNew = method.Step(sys, y, t, dt)
			t += dt
		}

		if !yNew.IsValid() {
			return tr, &trace.IntegrationError{Time: t, Step: step, Last: y.Clone(), Wrapped: trace.ErrSingularDerivative}
		}

		y = yNew
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, y.Clone())

		for _, ev := range opt.Events {
			if ev(y, t) {
				return tr, nil
			}
		}
	}

	return tr, nil
}

// New selects a stepper by name: "rk4", "dopri5", or "itrap".
func New(name string) (trace.Integrator, error) {
	switch name {
	case "rk4":
		return NewRK4(), nil
	case "dopri5", "dp45":
		return NewDoPri5(), nil
	case "itrap", "trapezoidal":
		return NewImplicitTrap(), nil
	default:
		return nil, fmt.Errorf("unknown integration method %q", name)
	}
}
