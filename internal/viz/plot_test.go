package viz

import (
	"strings"
	"testing"

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/trace"
)

func TestIsochronesPlotsCurves(t *testing.T) {
	isos := []trace.Isochrone{
		{T: 0.01, X: []float64{0, 0.5, 1}, Z: []float64{0.5, 0.3, 0.1}},
		{T: 0.02, X: []float64{0, 0.5, 1}, Z: []float64{0.4, 0.2, 0.05}},
	}
	out := Isochrones(isos, 40, 10, 8)
	if !strings.Contains(out, "┤") && !strings.Contains(out, "┼") {
		t.Errorf("expected an axis in the rendered graph, got:\n%s", out)
	}
}

func TestIsochronesEmpty(t *testing.T) {
	out := Isochrones(nil, 40, 10, 8)
	if !strings.Contains(out, "no isochrone data") {
		t.Errorf("expected the empty placeholder, got %q", out)
	}
}

func TestSummaryNamesFamilies(t *testing.T) {
	sol := &composite.Solution{
		Fingerprint: "eta=1.5",
		TEnd:        0.04,
		Families: []*trace.RayFamily{{
			Name: "profile",
		}},
	}
	out := Summary(sol)
	for _, want := range []string{"eta=1.5", "profile", "isochrones"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to mention %q:\n%s", want, out)
		}
	}
}
