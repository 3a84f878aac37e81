// Package exec runs compiled stencil plans.
//
// The [Executor] owns two pre-allocated field buffers and rotates them
// between time steps; chunks are dispatched to a fixed worker pool as their
// predecessors complete, tracked with atomic counters. Plans are validated
// for topological feasibility before the first cell is written, so a
// malformed graph can never leave buffers partially mutated.
//
// Executors are stateless between runs and safe to reuse; a plan may be run
// many times with fresh buffers as long as its inputs are unchanged.
package exec
