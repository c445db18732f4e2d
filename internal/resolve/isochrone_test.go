package resolve

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cstarkjp/GME/internal/trace"
)

// constRay is a ray that sits still over [0, 0.02]; enough for surface
// reconstruction, which samples by time.
func constRay(x, z float64) trace.Trajectory {
	y := trace.State{x, z, 0.5, -1}
	return trace.Trajectory{
		Times:  []float64{0, 0.02},
		States: []trace.State{y.Clone(), y.Clone()},
	}
}

func familyOf(xs, zs []float64) *trace.RayFamily {
	fam := &trace.RayFamily{Name: "test", TEnd: 0.02}
	for i := range xs {
		fam.Trajectories = append(fam.Trajectories, constRay(xs[i], zs[i]))
	}
	return fam
}

// foldedFamily reproduces a caustic: ray 4 has crossed back under ray 3
// by the sample time.
func foldedFamily() *trace.RayFamily {
	return familyOf(
		[]float64{0, 0.1, 0.2, 0.3, 0.25, 0.35, 0.5},
		[]float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.65, 0.5},
	)
}

func lineFamily(n int) *trace.RayFamily {
	xs := make([]float64, n)
	zs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(n-1)
		zs[i] = 1 - xs[i]
	}
	return familyOf(xs, zs)
}

var _ = Describe("TargetTimes", func() {
	It("spaces times evenly up to the family horizon fraction", func() {
		fam := lineFamily(4)
		times, err := TargetTimes(fam, Params{Count: 5, MaxFrac: 0.5})
		Expect(err).NotTo(HaveOccurred())
		Expect(times).To(HaveLen(5))
		for i := 1; i < len(times); i++ {
			Expect(times[i]).To(BeNumerically(">", times[i-1]))
		}
		Expect(times[0]).To(Equal(0.0))
		Expect(times[len(times)-1]).To(BeNumerically("~", 0.01, 1e-12))
	})

	It("honors an explicit time list", func() {
		want := []float64{0.001, 0.005, 0.011}
		times, err := TargetTimes(lineFamily(3), Params{Times: want})
		Expect(err).NotTo(HaveOccurred())
		Expect(times).To(Equal(want))
	})

	It("rejects a non-positive count", func() {
		_, err := TargetTimes(lineFamily(3), Params{Count: 0})
		Expect(err).To(HaveOccurred())
	})

	It("rejects non-increasing explicit times", func() {
		_, err := TargetTimes(lineFamily(3), Params{Times: []float64{0.01, 0.01}})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a negative tolerance", func() {
		_, err := TargetTimes(lineFamily(3), Params{Count: 3, Tol: -1})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a negative matching window", func() {
		_, err := TargetTimes(lineFamily(3), Params{Count: 3, Window: -1})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Isochrone resolution", func() {
	It("returns the raw folded point set when the tolerance is zero", func() {
		iso := At(foldedFamily(), 0.01, Params{Tol: 0})
		Expect(iso.X).To(HaveLen(7))
		Expect(iso.X).To(ContainElement(0.3))
		Expect(iso.X).To(ContainElement(0.25))
	})

	It("eliminates folded branches into a strictly increasing front", func() {
		raw := At(foldedFamily(), 0.01, Params{Tol: 0})
		iso := At(foldedFamily(), 0.01, Params{Tol: 1e-3})

		for i := 1; i < len(iso.X); i++ {
			Expect(iso.X[i]).To(BeNumerically(">", iso.X[i-1]))
		}
		// Elimination only removes points; it never invents them.
		for _, x := range iso.X {
			Expect(raw.X).To(ContainElement(x))
		}
		Expect(len(iso.X)).To(BeNumerically("<", len(raw.X)))
	})

	It("keeps the lower, most-eroded branch at a fold", func() {
		iso := At(foldedFamily(), 0.01, Params{Tol: 1e-3})
		Expect(iso.X).To(ContainElement(0.25))
		Expect(iso.X).NotTo(ContainElement(0.3))
	})

	It("keeps the upper branch when the polarity is inverted", func() {
		iso := At(foldedFamily(), 0.01, Params{Tol: 1e-3, KeepUpper: true})
		Expect(iso.X).To(ContainElement(0.3))
		Expect(iso.X).NotTo(ContainElement(0.25))
	})

	It("yields an explicitly empty isochrone beyond every ray's reach", func() {
		iso := At(lineFamily(4), 0.05, Params{Tol: 1e-3})
		Expect(iso.Empty()).To(BeTrue())
	})

	It("clamps trajectory endpoints within the matching window", func() {
		fam := lineFamily(4)
		iso := At(fam, 0.0205, Params{Window: 1e-3, Tol: 1e-3})
		Expect(iso.X).To(HaveLen(4))

		// The window, not the elimination gate, controls clamping.
		strict := At(fam, 0.0205, Params{Tol: 1e-3})
		Expect(strict.Empty()).To(BeTrue())
	})

	It("keeps the raw diagnostic set a superset of the eliminated set", func() {
		fam := foldedFamily()
		// One in-range target and one that only the window can reach.
		for _, t := range []float64{0.01, 0.0205} {
			raw := At(fam, t, Params{Window: 1e-3, Tol: 0})
			kept := At(fam, t, Params{Window: 1e-3, Tol: 1e-3})
			Expect(raw.X).To(HaveLen(7))
			Expect(len(kept.X)).To(BeNumerically("<", len(raw.X)))
			for _, x := range kept.X {
				Expect(raw.X).To(ContainElement(x))
			}
		}
	})

	It("records the surface tilt alongside each point", func() {
		iso := At(lineFamily(3), 0.01, Params{Tol: 0})
		Expect(iso.Slope).To(HaveLen(3))
		// -px/pz with px = 0.5, pz = -1.
		Expect(iso.Slope[0]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("fits a dense smoothing curve through an unfolded front", func() {
		iso := At(lineFamily(8), 0.01, Params{Tol: 1e-3, Order: 2, Dense: 50})
		Expect(iso.CurveX).To(HaveLen(50))
		Expect(iso.CurveZ).To(HaveLen(50))
		for i := range iso.CurveX {
			Expect(iso.CurveZ[i]).To(BeNumerically("~", 1-iso.CurveX[i], 1e-9))
		}
	})

	It("resolves every target time of a family", func() {
		isos, err := Isochrones(lineFamily(4), Params{Count: 6, Tol: 1e-3})
		Expect(err).NotTo(HaveOccurred())
		Expect(isos).To(HaveLen(6))
		for _, iso := range isos {
			Expect(iso.X).To(HaveLen(4))
		}
	})
})
