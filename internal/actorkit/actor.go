package actorkit

// Actor processes messages sequentially from its own mailbox. Receive is
// only ever called from the actor's own goroutine, so implementations
// need no internal synchronization over their own state.
type Actor interface {
	Receive(ctx Context)
}
