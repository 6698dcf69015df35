// Package progress keeps aggregated task counters for a scheduler: tasks
// spawned, running, completed, failed, cancelled and failures contained by
// supervision. A tracker travels in the task context so any component can
// record deltas without a global registry.
package progress
