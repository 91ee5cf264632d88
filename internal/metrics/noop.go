package metrics

// Noop is a Recorder that discards all events.
type Noop struct{}

// NewNoop returns a no-op Recorder.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) IncSignUp()          {}
func (n *Noop) IncSignIn()          {}
func (n *Noop) IncSignInFailed()    {}
func (n *Noop) IncSessionResolved() {}
func (n *Noop) IncSessionRejected() {}
func (n *Noop) IncTodoCreated()     {}
func (n *Noop) IncTodoUpdated()     {}
func (n *Noop) IncTodoDeleted()     {}
