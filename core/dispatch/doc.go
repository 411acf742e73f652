// Package dispatch orchestrates delivery assignment: it walks the
// priority-sorted pending queue, locates the nearest launch hub, ranks
// eligible drones and claims exactly one drone per delivery through an
// atomic store transaction. Every delivery yields a tagged outcome and no
// failure aborts the batch.
package dispatch
