package metrics

import "sync/atomic"

// InMemory is a Recorder backed by atomic counters.
// Safe for concurrent use from request handlers.
type InMemory struct {
	signUps          atomic.Uint64
	signIns          atomic.Uint64
	signInsFailed    atomic.Uint64
	sessionsResolved atomic.Uint64
	sessionsRejected atomic.Uint64

	todosCreated atomic.Uint64
	todosUpdated atomic.Uint64
	todosDeleted atomic.Uint64
}

// NewInMemory returns an in-memory Recorder.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) IncSignUp()          { m.signUps.Add(1) }
func (m *InMemory) IncSignIn()          { m.signIns.Add(1) }
func (m *InMemory) IncSignInFailed()    { m.signInsFailed.Add(1) }
func (m *InMemory) IncSessionResolved() { m.sessionsResolved.Add(1) }
func (m *InMemory) IncSessionRejected() { m.sessionsRejected.Add(1) }
func (m *InMemory) IncTodoCreated()     { m.todosCreated.Add(1) }
func (m *InMemory) IncTodoUpdated()     { m.todosUpdated.Add(1) }
func (m *InMemory) IncTodoDeleted()     { m.todosDeleted.Add(1) }

// Snapshot returns a point-in-time copy of all counters.
func (m *InMemory) Snapshot() Snapshot {
	return Snapshot{
		SignUps:          m.signUps.Load(),
		SignIns:          m.signIns.Load(),
		SignInsFailed:    m.signInsFailed.Load(),
		SessionsResolved: m.sessionsResolved.Load(),
		SessionsRejected: m.sessionsRejected.Load(),
		TodosCreated:     m.todosCreated.Load(),
		TodosUpdated:     m.todosUpdated.Load(),
		TodosDeleted:     m.todosDeleted.Load(),
	}
}
