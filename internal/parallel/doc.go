// Package parallel provides the worker pool behind the parallel Prepare
// phase of package batch.
//
// Tasks receive the index of the worker running them, which indexes a
// PerWorker value holding that worker's scratch memory.
package parallel
