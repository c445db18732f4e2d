package integrate

import "github.com/cstarkjp/GME/internal/trace"

type RK4 struct {
	k1, k2, k3, k4 trace.State
	scratch        trace.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(trace.State, n)
		r.k2 = make(trace.State, n)
		r.k3 = make(trace.State, n)
		r.k4 = make(trace.State, n)
		r.scratch = make(trace.State, n)
	}
}

func (r *RK4) Step(sys trace.System, y trace.State, t, dt float64) trace.State {
	n := len(y)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(y, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + dt*r.k3[i]
	}
	copy(r.k4, sys.Derive(r.scratch, t+dt))

	result := make(trace.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = y[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
