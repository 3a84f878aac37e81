// Package grid describes the index space a stencil computation runs over.
//
// A [Domain] is a bounded N-dimensional region of integer coordinates with a
// boundary policy per dimension:
//
//   - [Periodic]: out-of-range reads wrap around
//   - [ZeroClamp]: out-of-range reads are zero
//   - [EdgeClamp]: out-of-range reads clamp to the nearest edge cell
//
// Domains are immutable after construction and safe for concurrent use.
package grid
