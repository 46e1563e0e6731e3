package ports

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback if it has not fired yet. Reports whether the
	// cancellation landed before the callback ran.
	Stop() bool
}

// Scheduler defers work, such as the reshuffle settle delay. Implementations
// must run fn on the owning table's event loop so table access stays
// serialized; the table itself never locks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}
