package trace

import "math"

// State is a phase-space vector. For the Hamiltonian ray system the layout
// is [rx, rz, px, pz]; for the geodesic system it is [rx, rz, vx, vz].
type State []float64

// Indices into a ray State.
const (
	IRx = 0
	IRz = 1
	IPx = 2
	IPz = 3
)

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is a numeric right-hand side for one ODE family, supplied by the
// equation provider. Implementations must be pure: no internal mutable
// state, callable from any ray's integration concurrently.
type System interface {
	Derive(y State, t float64) State
	Dim() int
}

// Integrator advances a state by one step of size dt.
type Integrator interface {
	Step(sys System, y State, t, dt float64) State
}

// AdaptiveIntegrator additionally supports embedded error estimation. A
// call attempts a step of size dt, shrinking internally until the local
// error estimate satisfies tol, and returns the accepted state, the step
// actually taken, a suggested next step size, and any stepper-level
// failure.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, y State, t, dt, tol float64) (yNew State, dtUsed, dtNext float64, err error)
}

// Regime identifies the boundary-condition family a trajectory was seeded
// under.
type Regime int

const (
	RegimeInitialProfile Regime = iota
	RegimeInitialCorner
	RegimeVelocityBoundary
	RegimeVariableVelocity
)

func (r Regime) String() string {
	switch r {
	case RegimeInitialProfile:
		return "profile"
	case RegimeInitialCorner:
		return "corner"
	case RegimeVelocityBoundary:
		return "boundary"
	case RegimeVariableVelocity:
		return "boundary-variable"
	}
	return "unknown"
}

// Trajectory is one ray's time-indexed path through phase space.
// Times are strictly increasing; States are owned by the trajectory.
type Trajectory struct {
	Times  []float64
	States []State

	SeedTime float64
	SeedX    float64
	Regime   Regime
}

// Len reports the number of recorded samples. A seed beyond the
// integration horizon yields a zero-length trajectory.
func (tr *Trajectory) Len() int { return len(tr.Times) }

// TMax reports the last time the ray reached, or the seed time when the
// trajectory is empty.
func (tr *Trajectory) TMax() float64 {
	if len(tr.Times) == 0 {
		return tr.SeedTime
	}
	return tr.Times[len(tr.Times)-1]
}

// Covers reports whether the trajectory's recorded span contains t.
func (tr *Trajectory) Covers(t float64) bool {
	return len(tr.Times) > 0 && tr.Times[0] <= t && t <= tr.Times[len(tr.Times)-1]
}

// At interpolates the trajectory state at time t. The second return is
// false when t lies outside the recorded span.
func (tr *Trajectory) At(t float64) (State, bool) {
	n := len(tr.Times)
	if n == 0 || t < tr.Times[0] || t > tr.Times[n-1] {
		return nil, false
	}
	// Binary search for the left bracket.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if tr.Times[mid] <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	if tr.Times[lo] == t || lo == n-1 {
		return tr.States[lo].Clone(), true
	}
	w := (t - tr.Times[lo]) / (tr.Times[hi] - tr.Times[lo])
	y := make(State, len(tr.States[lo]))
	for i := range y {
		y[i] = tr.States[lo][i] + w*(tr.States[hi][i]-tr.States[lo][i])
	}
	return y, true
}

// RayFailure records one ray's integration failure inside a family. The
// family proceeds with its remaining rays.
type RayFailure struct {
	Index int
	Err   error
}

// RayFamily is an ordered collection of trajectories sharing a regime and
// a model fingerprint. It is append-only during generation and frozen
// before resolution.
type RayFamily struct {
	Name        string
	Regime      Regime
	Fingerprint string
	TEnd        float64

	Trajectories []Trajectory
	Failures     []RayFailure
}

// TMax reports the latest time reached by any member trajectory.
func (f *RayFamily) TMax() float64 {
	tMax := 0.0
	for i := range f.Trajectories {
		if t := f.Trajectories[i].TMax(); t > tMax {
			tMax = t
		}
	}
	return tMax
}

// Isochrone is the reconstructed surface at one target time: point fields
// ordered along the spatial axis, plus an optional dense fitted curve.
// An isochrone may be empty when no ray reaches its time.
type Isochrone struct {
	T     float64
	X     []float64
	Z     []float64
	Slope []float64

	CurveX []float64
	CurveZ []float64
}

// Empty reports whether no trajectory contributed a point.
func (iso *Isochrone) Empty() bool { return len(iso.X) == 0 }
