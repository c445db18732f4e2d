// Package trace defines the core value types shared by the erosion
// ray-tracing engine: phase-space states, ray trajectories, ray families,
// isochrones, and the integration error taxonomy.
//
// A ray's state is the vector (rx, rz, px, pz): horizontal and vertical
// position plus the conjugate normal-slowness components. Trajectories are
// append-only during integration and immutable afterwards; isochrones are
// derived read-only artifacts holding no references into their source
// family's states.
package trace
