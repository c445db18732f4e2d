package composite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstarkjp/GME/internal/knick"
	"github.com/cstarkjp/GME/internal/trace"
)

func testFamily(fingerprint string, tEnd float64, regime trace.Regime) *trace.RayFamily {
	return &trace.RayFamily{
		Name:        regime.String(),
		Regime:      regime,
		Fingerprint: fingerprint,
		TEnd:        tEnd,
	}
}

func TestAssembleRejectsEmpty(t *testing.T) {
	_, err := Assemble()
	require.Error(t, err)
}

func TestAssembleRejectsFingerprintMismatch(t *testing.T) {
	_, err := Assemble(
		Part{Family: testFamily("eta=1.5", 0.04, trace.RegimeInitialProfile)},
		Part{Family: testFamily("eta=1.0", 0.04, trace.RegimeVelocityBoundary)},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, trace.ErrModelMismatch))
}

func TestAssembleRejectsHorizonMismatch(t *testing.T) {
	_, err := Assemble(
		Part{Family: testFamily("eta=1.5", 0.04, trace.RegimeInitialProfile)},
		Part{Family: testFamily("eta=1.5", 0.02, trace.RegimeVelocityBoundary)},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, trace.ErrModelMismatch))
}

func TestAssembleMergesOrdered(t *testing.T) {
	a := Part{
		Family:      testFamily("eta=1.5", 0.04, trace.RegimeInitialProfile),
		Isochrones:  []trace.Isochrone{{T: 0.02}, {T: 0.04}},
		Knickpoints: []knick.Knickpoint{{SeedTime: 0.03}},
	}
	b := Part{
		Family:      testFamily("eta=1.5", 0.04, trace.RegimeVelocityBoundary),
		Isochrones:  []trace.Isochrone{{T: 0.01}, {T: 0.03}},
		Knickpoints: []knick.Knickpoint{{SeedTime: 0.01}},
	}

	sol, err := Assemble(a, b)
	require.NoError(t, err)

	assert.Equal(t, "eta=1.5", sol.Fingerprint)
	assert.Equal(t, 0.04, sol.TEnd)

	require.Len(t, sol.Families, 2)
	assert.Equal(t, trace.RegimeInitialProfile, sol.Families[0].Regime)
	assert.Equal(t, trace.RegimeVelocityBoundary, sol.Families[1].Regime)

	require.Len(t, sol.Isochrones, 4)
	for i := 1; i < len(sol.Isochrones); i++ {
		assert.Less(t, sol.Isochrones[i-1].T, sol.Isochrones[i].T)
	}

	require.Len(t, sol.Knickpoints, 2)
	assert.Equal(t, 0.01, sol.Knickpoints[0].SeedTime)
	assert.Equal(t, 0.03, sol.Knickpoints[1].SeedTime)
}

func TestAssembleIncludesGeodesicCompanion(t *testing.T) {
	geo := testFamily("eta=1.5", 0.04, trace.RegimeInitialProfile)
	geo.Name = geo.Name + "-geodesic"

	sol, err := Assemble(Part{
		Family:   testFamily("eta=1.5", 0.04, trace.RegimeInitialProfile),
		Geodesic: geo,
	})
	require.NoError(t, err)
	require.Len(t, sol.Families, 2)
	assert.Equal(t, "profile-geodesic", sol.Families[1].Name)
}

func TestSolvePreservesSolverOrder(t *testing.T) {
	mk := func(regime trace.Regime) func(context.Context) (Part, error) {
		return func(context.Context) (Part, error) {
			return Part{Family: testFamily("m", 0.04, regime)}, nil
		}
	}

	sol, err := Solve(context.Background(),
		mk(trace.RegimeInitialProfile),
		mk(trace.RegimeVelocityBoundary),
		mk(trace.RegimeInitialCorner),
	)
	require.NoError(t, err)
	require.Len(t, sol.Families, 3)
	assert.Equal(t, trace.RegimeInitialProfile, sol.Families[0].Regime)
	assert.Equal(t, trace.RegimeVelocityBoundary, sol.Families[1].Regime)
	assert.Equal(t, trace.RegimeInitialCorner, sol.Families[2].Regime)
}

func TestSolvePropagatesFailure(t *testing.T) {
	boom := errors.New("ray family failed")
	_, err := Solve(context.Background(),
		func(context.Context) (Part, error) {
			return Part{Family: testFamily("m", 0.04, trace.RegimeInitialProfile)}, nil
		},
		func(context.Context) (Part, error) {
			return Part{}, boom
		},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}
