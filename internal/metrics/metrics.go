// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	IncSignUp()
	IncSignIn()
	IncSignInFailed()
	IncSessionResolved()
	IncSessionRejected()

	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	SignUps          uint64
	SignIns          uint64
	SignInsFailed    uint64
	SessionsResolved uint64
	SessionsRejected uint64

	TodosCreated uint64
	TodosUpdated uint64
	TodosDeleted uint64
}
