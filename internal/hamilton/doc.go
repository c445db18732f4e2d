// Package hamilton is the numeric equation provider for the erosion ray
// system. It evaluates the closed-form Hamilton's equations for the
// geometric-mechanics erosion model
//
//	ξ⊥ = φ(r) |sin β|^η   (or |tan β|^η)
//
// with flow component φ given by a ramp or ramp-flat law, and constructs
// seed states for the supported boundary-condition regimes: initial
// topographic profiles (planar, convex-up, concave-up), corner fans, and
// a moving velocity boundary with vertical erosion rate ξ↓.
//
// All functions are pure in the model parameters; a [ModelSpec] is frozen
// at construction and shared by every ray of a solve.
package hamilton
