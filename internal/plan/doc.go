// Package plan compiles a multi-step stencil computation into a chunk graph
// the executor can schedule.
//
// A [Plan] holds a flat arena of [Chunk] values; each chunk covers one
// spatial region at one time step and lists its predecessors by arena index.
// Two interchangeable strategies produce plans:
//
//   - [Direct]: one chunk per step over the whole domain
//   - [SpatialTiled]: fixed-size tiles per step, enabling intra-step
//     parallelism
//
// Every strategy must produce graphs with the same contract: a chunk's
// region, expanded by the stencil radius and resolved through the boundary
// policy, is covered by its predecessors plus boundary-derived values.
// [Plan.Validate] checks structural integrity before any buffer is touched.
package plan
