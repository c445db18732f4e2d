package hamilton

import (
	"fmt"
	"math"
)

// Slope-law and flow-model selectors.
const (
	BetaSin = "sin"
	BetaTan = "tan"

	VarphiRamp     = "ramp"
	VarphiRampFlat = "ramp-flat"

	IBCPlanar    = "planar"
	IBCConvexUp  = "convex-up"
	IBCConcaveUp = "concave-up"
)

// ModelSpec is the frozen set of physical and geometric parameters
// defining one solve's governing equations. It is created once per job
// and never mutated.
type ModelSpec struct {
	Eta float64 // slope exponent
	Mu  float64 // flow exponent

	BetaType   string
	VarphiType string
	IBCType    string

	Varphi0 float64 // flow amplitude
	Epsilon float64 // ramp regularization
	X1      float64 // domain extent

	H0     float64 // initial profile height
	KappaH float64 // initial profile curvature scale

	Xiv0 float64 // reference vertical erosion rate at the boundary

	// ramp-flat shape
	Chi    float64
	XSigma float64
	XH     float64
}

// Default returns the reference parameter set used throughout the tests:
// a sin slope law with a ramp flow model over a unit domain.
func Default() ModelSpec {
	return ModelSpec{
		Eta:        1.5,
		Mu:         0.75,
		BetaType:   BetaSin,
		VarphiType: VarphiRamp,
		IBCType:    IBCPlanar,
		Varphi0:    15.0,
		Epsilon:    0.01,
		X1:         1.0,
		H0:         0.5,
		KappaH:     3.0,
		Xiv0:       30.0,
		Chi:        2.0,
		XSigma:     0.03,
		XH:         0.2,
	}
}

func (m ModelSpec) Validate() error {
	if m.Eta <= 0 {
		return fmt.Errorf("eta must be positive, got %g", m.Eta)
	}
	if m.Mu <= 0 {
		return fmt.Errorf("mu must be positive, got %g", m.Mu)
	}
	if m.X1 <= 0 {
		return fmt.Errorf("x1 must be positive, got %g", m.X1)
	}
	if m.Varphi0 <= 0 {
		return fmt.Errorf("varphi0 must be positive, got %g", m.Varphi0)
	}
	if m.Epsilon < 0 {
		return fmt.Errorf("epsilon must be non-negative, got %g", m.Epsilon)
	}
	if m.Xiv0 <= 0 {
		return fmt.Errorf("xiv0 must be positive, got %g", m.Xiv0)
	}
	switch m.BetaType {
	case BetaSin, BetaTan:
	default:
		return fmt.Errorf("unknown slope law %q", m.BetaType)
	}
	switch m.VarphiType {
	case VarphiRamp:
	case VarphiRampFlat:
		if m.XSigma <= 0 {
			return fmt.Errorf("ramp-flat flow model requires positive x_sigma, got %g", m.XSigma)
		}
	default:
		return fmt.Errorf("unknown flow model %q", m.VarphiType)
	}
	switch m.IBCType {
	case IBCPlanar, IBCConvexUp, IBCConcaveUp:
	default:
		return fmt.Errorf("unknown initial boundary shape %q", m.IBCType)
	}
	return nil
}

// Fingerprint is a stable identity string for composite-assembly
// consistency checks: two solves may be merged only when their
// fingerprints match.
func (m ModelSpec) Fingerprint() string {
	return fmt.Sprintf("eta=%g mu=%g beta=%s varphi=%s ibc=%s phi0=%g eps=%g x1=%g h0=%g kh=%g xiv0=%g chi=%g xs=%g xh=%g",
		m.Eta, m.Mu, m.BetaType, m.VarphiType, m.IBCType,
		m.Varphi0, m.Epsilon, m.X1, m.H0, m.KappaH, m.Xiv0,
		m.Chi, m.XSigma, m.XH)
}

// Varphi evaluates the flow component φ(rx) of the erosion model. The
// ramp base is clamped at zero so intermediate stepper stages that
// overshoot x1 stay finite until the domain-exit event fires.
func (m ModelSpec) Varphi(rx float64) float64 {
	switch m.VarphiType {
	case VarphiRampFlat:
		u := (m.X1 - rx - m.XH) / m.XSigma
		return m.Varphi0 * (1 + (m.Chi/m.X1)*m.XSigma*math.Log1p(math.Exp(u)))
	default:
		return m.Varphi0 * (m.Epsilon + math.Pow(m.rampBase(rx), 2*m.Mu))
	}
}

// DVarphi evaluates dφ/drx.
func (m ModelSpec) DVarphi(rx float64) float64 {
	switch m.VarphiType {
	case VarphiRampFlat:
		u := (m.X1 - rx - m.XH) / m.XSigma
		sigma := 1 / (1 + math.Exp(-u))
		return -m.Varphi0 * (m.Chi / m.X1) * sigma
	default:
		return -m.Varphi0 * 2 * m.Mu * math.Pow(m.rampBase(rx), 2*m.Mu-1) / m.X1
	}
}

func (m ModelSpec) rampBase(rx float64) float64 {
	return math.Max((m.X1-rx)/m.X1, 0)
}

// Profile evaluates the initial topographic surface h(x) and its gradient
// h'(x) for the configured boundary shape.
func (m ModelSpec) Profile(x float64) (h, gradH float64) {
	switch m.IBCType {
	case IBCConvexUp:
		denom := math.Tanh(m.KappaH / m.X1)
		th := math.Tanh(m.KappaH * x / m.X1)
		h = m.H0 * th / denom
		gradH = m.H0 * (m.KappaH / m.X1) * (1 - th*th) / denom
	case IBCConcaveUp:
		denom := math.Tanh(m.KappaH / m.X1)
		th := math.Tanh(m.KappaH * (x - m.X1) / m.X1)
		h = m.H0 * (1 + th/denom)
		gradH = m.H0 * (m.KappaH / m.X1) * (1 - th*th) / denom
	default:
		h = m.H0 * x / m.X1
		gradH = m.H0 / m.X1
	}
	return h, gradH
}
