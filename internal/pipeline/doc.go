// Package pipeline acquires score series for a list of identifiers.
//
// Each identifier becomes a model.Target that is pushed through a sequence of
// steps: cache check, probe, fetch, extract, persist and load. Every step
// advances the target's state machine, so a step running out of order fails
// loudly instead of silently producing a wrong series.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It gives consistent error handling and logging across steps
// 2. It supports cancellation via context between steps
// 3. The discovery and acquisition phases reuse the same machinery with
// different step lists and failure strategies
//
// The Acquirer wires the steps together and runs them for many identifiers
// with concurrency control using errgroup.
package pipeline
