package actorkit

// Context is handed to an Actor's Receive for every message it processes.
type Context interface {
	Engine() *Engine
	Self() *PID
	Sender() *PID
	Message() interface{}
	// Respond replies to a message delivered via Engine.Ask. It is a no-op
	// (and safe to call) when the current message was a plain Send.
	Respond(value interface{})
}

type context struct {
	engine  *Engine
	self    *PID
	sender  *PID
	message interface{}
	replyTo chan interface{}
}

func (c *context) Engine() *Engine      { return c.engine }
func (c *context) Self() *PID           { return c.self }
func (c *context) Sender() *PID         { return c.sender }
func (c *context) Message() interface{} { return c.message }

func (c *context) Respond(value interface{}) {
	if c.replyTo == nil {
		return
	}
	select {
	case c.replyTo <- value:
	default:
	}
	c.replyTo = nil
}
