// Package resolve reconstructs time-sliced isochrone surfaces from a
// frozen ray family.
//
// For each target time the resolver interpolates every trajectory's state
// at that time, collects the contributing points in ray order, removes
// caustic folds where rays have crossed, and optionally fits a smoothing
// local-polynomial curve through the surviving points.
//
// Branch selection at a fold is fixed by policy: the lower-elevation
// (most-eroded) branch survives; regimes with inverted polarity may keep
// the upper branch instead. A resolution tolerance of exactly zero
// disables elimination and yields the raw, possibly folded, point set,
// as a diagnostic mode rather than the production path. Endpoint
// clamping onto near-miss target times is governed by a separate
// matching window, so the diagnostic set always contains every point
// the production set keeps.
//
// The resolver is read-only over its family and safe to run concurrently
// with unrelated solves.
package resolve
