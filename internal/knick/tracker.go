package knick

import (
	"fmt"
	"sort"

	"github.com/cstarkjp/GME/internal/trace"
)

// Phase is a knickpoint's lifecycle state.
type Phase int

const (
	Seeded Phase = iota
	Propagating
	Merged
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Seeded:
		return "seeded"
	case Propagating:
		return "propagating"
	case Merged:
		return "merged"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Seed declares one discontinuity to track: its seed time and the indices
// of the two family trajectories bounding the break. The references are
// non-owning; the tracker never outlives its family.
type Seed struct {
	SeedTime float64
	Left     int
	Right    int
}

// Knickpoint is one tracked discontinuity's position/time history.
type Knickpoint struct {
	SeedTime float64
	Left     int
	Right    int

	Phase      Phase
	MergedInto int // index into the tracked set, valid when Phase == Merged
	EndTime    float64

	Times []float64
	X     []float64
	Z     []float64
}

// Track follows every seeded discontinuity across the sample times.
// Knickpoints are returned in seed order. Sample times must be strictly
// increasing.
func Track(fam *trace.RayFamily, seeds []Seed, times []float64) ([]Knickpoint, error) {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("knickpoint sample times must be strictly increasing")
		}
	}
	kps := make([]Knickpoint, len(seeds))
	for i, s := range seeds {
		if s.Left < 0 || s.Right >= len(fam.Trajectories) || s.Left >= s.Right {
			return nil, fmt.Errorf("knickpoint %d: bad bounding trajectories [%d, %d]", i, s.Left, s.Right)
		}
		kps[i] = Knickpoint{
			SeedTime:   s.SeedTime,
			Left:       s.Left,
			Right:      s.Right,
			Phase:      Seeded,
			MergedInto: -1,
		}
	}

	for _, t := range times {
		positions := make([]float64, len(kps))
		for i := range kps {
			kp := &kps[i]
			if kp.Phase == Merged || kp.Phase == Terminated || t < kp.SeedTime {
				positions[i] = kp.lastX()
				continue
			}

			x, z, ok := midpoint(fam, kp.Left, kp.Right, t)
			if !ok {
				kp.terminate(t)
				positions[i] = kp.lastX()
				continue
			}
			kp.Phase = Propagating
			kp.Times = append(kp.Times, t)
			kp.X = append(kp.X, x)
			kp.Z = append(kp.Z, z)
			positions[i] = x
		}

		mergeCrossed(kps, positions, t)
	}

	for i := range kps {
		if kps[i].Phase == Propagating {
			kps[i].terminate(lastOf(times))
		}
	}
	return kps, nil
}

// midpoint locates the discontinuity between the bounding trajectories at
// time t. Both bounds must still cover t; the break sits midway between
// them, and an ordering inversion of the bounds themselves means the fan
// has collapsed.
func midpoint(fam *trace.RayFamily, left, right int, t float64) (x, z float64, ok bool) {
	yl, okL := fam.Trajectories[left].At(t)
	yr, okR := fam.Trajectories[right].At(t)
	if !okL || !okR {
		return 0, 0, false
	}
	return 0.5 * (yl[trace.IRx] + yr[trace.IRx]), 0.5 * (yl[trace.IRz] + yr[trace.IRz]), true
}

// mergeCrossed resolves ordering inversions between live knickpoints at
// one sample time. The earliest-seeded knickpoint of a crossing pair
// survives; on equal seed times the lower tracked index wins.
func mergeCrossed(kps []Knickpoint, positions []float64, t float64) {
	live := make([]int, 0, len(kps))
	for i := range kps {
		if kps[i].Phase == Propagating {
			live = append(live, i)
		}
	}
	// Canonical surface order follows the bounding trajectory indices; a
	// crossing is an inversion of current positions against that order.
	sort.SliceStable(live, func(a, b int) bool { return kps[live[a]].Left < kps[live[b]].Left })

	for i := 0; i+1 < len(live); i++ {
		a, b := live[i], live[i+1]
		if kps[a].Phase != Propagating || kps[b].Phase != Propagating {
			continue
		}
		if positions[a] < positions[b] {
			continue
		}
		survivor, absorbed := a, b
		if kps[b].SeedTime < kps[a].SeedTime || (kps[b].SeedTime == kps[a].SeedTime && b < a) {
			survivor, absorbed = b, a
		}
		kps[absorbed].Phase = Merged
		kps[absorbed].MergedInto = survivor
		kps[absorbed].EndTime = t
	}
}

func (kp *Knickpoint) lastX() float64 {
	if len(kp.X) == 0 {
		return 0
	}
	return kp.X[len(kp.X)-1]
}

func (kp *Knickpoint) terminate(t float64) {
	kp.Phase = Terminated
	kp.EndTime = t
}

func lastOf(ts []float64) float64 {
	if len(ts) == 0 {
		return 0
	}
	return ts[len(ts)-1]
}
