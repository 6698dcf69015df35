// Package host defines the contract between supervision policies and the
// scheduler that executes tasks. A host waits for events matching a
// pattern, exposes a state snapshot, runs tasks inline or forks them, and
// cancels them cooperatively through their context.
//
// Package runtime provides a reference implementation; package supervise
// only depends on the interfaces declared here.
package host
