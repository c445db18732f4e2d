// Package knick tracks slope discontinuities (knickpoints) propagating
// through a ray family.
//
// A knickpoint is bounded by the pair of adjacent trajectories on either
// side of the slope break and follows their midpoint through time. Each
// knickpoint runs a small state machine: Seeded on creation, Propagating
// once tracked, and finally Merged into another knickpoint or Terminated
// when it exits the domain or the integration horizon is reached. When
// two knickpoints' bounding trajectories cross, the one with the earliest
// seed time survives the merge; the tie-break is a fixed policy, not
// inferred from the data.
package knick
