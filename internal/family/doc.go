// Package family seeds and integrates ensembles of rays under the
// supported boundary-condition regimes.
//
// A regime is a tagged variant ([Spec]): regimes differ only in how they
// construct initial conditions, never in how integration proceeds. Ray
// integrations are independent of one another and fan out across a fixed
// worker pool; cancellation is honored between rays, not mid-step.
// Per-ray failures are recorded on the family and the remaining rays
// proceed; a family with zero successful rays is itself a failure.
package family
