package integrate

import (
	"errors"
	"math"
	"testing"

	"github.com/cstarkjp/GME/internal/trace"
)

// expSystem is dy/dt = y, exact solution e^t.
type expSystem struct{}

func (expSystem) Dim() int { return 1 }

func (expSystem) Derive(y trace.State, t float64) trace.State {
	return trace.State{y[0]}
}

// oscSystem is the unit harmonic oscillator.
type oscSystem struct{}

func (oscSystem) Dim() int { return 2 }

func (oscSystem) Derive(y trace.State, t float64) trace.State {
	return trace.State{y[1], -y[0]}
}

// decaySystem is dy/dt = -y.
type decaySystem struct{}

func (decaySystem) Dim() int { return 1 }

func (decaySystem) Derive(y trace.State, t float64) trace.State {
	return trace.State{-y[0]}
}

func finalState(t *testing.T, tr trace.Trajectory) trace.State {
	t.Helper()
	if tr.Len() == 0 {
		t.Fatal("expected a non-empty trajectory")
	}
	return tr.States[tr.Len()-1]
}

func TestRK4Exponential(t *testing.T) {
	tr, err := Trace(expSystem{}, trace.State{1}, 0, 1, NewRK4(), Options{Dt0: 1e-3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := finalState(t, tr)[0]
	if math.Abs(got-math.E) > 1e-9 {
		t.Errorf("expected e, got %.12f (err %.3g)", got, math.Abs(got-math.E))
	}
}

func TestDoPri5Exponential(t *testing.T) {
	tr, err := Trace(expSystem{}, trace.State{1}, 0, 1, NewDoPri5(), Options{Tol: 1e-10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := finalState(t, tr)[0]
	if math.Abs(got-math.E) > 1e-7 {
		t.Errorf("expected e, got %.12f (err %.3g)", got, math.Abs(got-math.E))
	}
}

func TestDoPri5Harmonic(t *testing.T) {
	tr, err := Trace(oscSystem{}, trace.State{1, 0}, 0, 2*math.Pi, NewDoPri5(), Options{Tol: 1e-10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y := finalState(t, tr)
	if math.Abs(y[0]-1) > 1e-6 || math.Abs(y[1]) > 1e-6 {
		t.Errorf("expected return to (1, 0) after one period, got (%.9f, %.9f)", y[0], y[1])
	}
}

func TestImplicitTrapDecay(t *testing.T) {
	tr, err := Trace(decaySystem{}, trace.State{1}, 0, 1, NewImplicitTrap(), Options{Dt0: 1e-3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := finalState(t, tr)[0]
	want := math.Exp(-1)
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("expected %.9f, got %.9f", want, got)
	}
}

func TestTraceSeedBeyondHorizon(t *testing.T) {
	tr, err := Trace(expSystem{}, trace.State{1}, 2, 1, NewRK4(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Len() != 0 {
		t.Errorf("expected zero-length trajectory, got %d samples", tr.Len())
	}
	if tr.SeedTime != 2 {
		t.Errorf("expected seed time preserved, got %g", tr.SeedTime)
	}
}

func TestTraceInvalidSeed(t *testing.T) {
	_, err := Trace(expSystem{}, trace.State{math.NaN()}, 0, 1, NewRK4(), Options{})
	if !errors.Is(err, trace.ErrSingularDerivative) {
		t.Fatalf("expected singular derivative error, got %v", err)
	}
	var ierr *trace.IntegrationError
	if !errors.As(err, &ierr) {
		t.Fatal("expected a *trace.IntegrationError")
	}
}

func TestTraceEventStops(t *testing.T) {
	stop := func(y trace.State, tt float64) bool { return y[0] > 2 }
	tr, err := Trace(expSystem{}, trace.State{1}, 0, 5, NewRK4(), Options{Dt0: 1e-3, Events: []Event{stop}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := finalState(t, tr)[0]
	if last <= 2 {
		t.Errorf("expected to stop past the threshold, got %g", last)
	}
	if tMax := tr.TMax(); tMax >= 1 {
		t.Errorf("expected early termination near ln 2, got t=%g", tMax)
	}
}

func TestTraceMaxSteps(t *testing.T) {
	tr, err := Trace(expSystem{}, trace.State{1}, 0, 1, NewRK4(), Options{Dt0: 1e-4, MaxSteps: 10})
	if !errors.Is(err, trace.ErrHorizonExceeded) {
		t.Fatalf("expected horizon exceeded, got %v", err)
	}
	if tr.Len() == 0 {
		t.Error("expected the partial trajectory to be preserved")
	}
	var ierr *trace.IntegrationError
	if !errors.As(err, &ierr) {
		t.Fatal("expected a *trace.IntegrationError")
	}
	if len(ierr.Last) == 0 || !ierr.Last.IsValid() {
		t.Error("expected the failure to carry the last valid state")
	}
}

func TestAdaptiveStepWithinTolerance(t *testing.T) {
	r := NewDoPri5()
	y := trace.State{1}
	_, dtUsed, dtNext, err := r.StepAdaptive(expSystem{}, y, 0, 0.5, 1e-10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dtUsed <= 0 || dtUsed > 0.5 {
		t.Errorf("expected a used step in (0, 0.5], got %g", dtUsed)
	}
	if dtNext <= 0 {
		t.Errorf("expected a positive next step, got %g", dtNext)
	}
}

func TestNewMethodNames(t *testing.T) {
	for _, name := range []string{"rk4", "dopri5", "dp45", "itrap", "trapezoidal"} {
		if _, err := New(name); err != nil {
			t.Errorf("expected %q to resolve, got %v", name, err)
		}
	}
	if _, err := New("euler"); err == nil {
		t.Error("expected an error for an unknown method")
	}
}
