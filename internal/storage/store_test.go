package storage

import (
	"math"
	"testing"

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/trace"
)

func testSolution() *composite.Solution {
	fam := &trace.RayFamily{
		Name:        "initial-profile",
		Fingerprint: "eta=1.5",
		TEnd:        0.04,
		Trajectories: []trace.Trajectory{
			{
				Times: []float64{0, 0.01},
				States: []trace.State{
					{0, 0, 0.5, -1},
					{0.1, -0.05, 0.48, -1},
				},
			},
		},
	}
	return &composite.Solution{
		Fingerprint: "eta=1.5",
		TEnd:        0.04,
		Families:    []*trace.RayFamily{fam},
		Isochrones: []trace.Isochrone{
			{T: 0.01, X: []float64{0, 0.1}, Z: []float64{0.5, 0.45}, Slope: []float64{0.5, 0.48}},
			{T: 0.02, X: []float64{0, 0.2}, Z: []float64{0.4, 0.35}, Slope: []float64{0.5, 0.46}},
		},
	}
}

func TestSaveListLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := store.Save(testSolution())
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("expected a run ID")
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	meta := runs[0]
	if meta.ID != runID {
		t.Errorf("expected run ID %q, got %q", runID, meta.ID)
	}
	if meta.Fingerprint != "eta=1.5" || meta.EndTime != 0.04 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Families != 1 || meta.Rays != 1 || meta.Isochrones != 2 {
		t.Errorf("metadata counts mismatch: %+v", meta)
	}

	isos, err := store.LoadIsochrones(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(isos) != 2 {
		t.Fatalf("expected 2 isochrones, got %d", len(isos))
	}
	want := testSolution().Isochrones
	for i := range isos {
		if math.Abs(isos[i].T-want[i].T) > 1e-9 {
			t.Errorf("isochrone %d: time %g vs %g", i, isos[i].T, want[i].T)
		}
		if len(isos[i].X) != len(want[i].X) {
			t.Fatalf("isochrone %d: point count %d vs %d", i, len(isos[i].X), len(want[i].X))
		}
		for k := range isos[i].X {
			if math.Abs(isos[i].X[k]-want[i].X[k]) > 1e-9 ||
				math.Abs(isos[i].Z[k]-want[i].Z[k]) > 1e-9 ||
				math.Abs(isos[i].Slope[k]-want[i].Slope[k]) > 1e-9 {
				t.Errorf("isochrone %d point %d differs after reload", i, k)
			}
		}
	}
}

func TestListEmptyStore(t *testing.T) {
	store := New(t.TempDir() + "/absent")
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadIsochronesMissingRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.LoadIsochrones("run_0"); err == nil {
		t.Error("expected an error for a missing run")
	}
}
