package actorkit

import (
	"runtime/debug"

	"go.uber.org/zap"
)

const defaultMailboxSize = 1024

// process is the running instance of an actor: its state plus the mailbox
// goroutine that drains it.
type process struct {
	engine  *Engine
	pid     *PID
	actor   Actor
	mailbox chan *messageEnvelope
	props   *Props
	stopCh  chan struct{}
	stopped bool
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		mailbox: make(chan *messageEnvelope, defaultMailboxSize),
		stopCh:  make(chan struct{}),
	}
}

// sendMessage enqueues an envelope, dropping it (and logging) if the
// mailbox is full rather than blocking the sender.
func (p *process) sendMessage(envelope *messageEnvelope) {
	select {
	case p.mailbox <- envelope:
	default:
		p.engine.logger().Warn("actor mailbox full, dropping message",
			zap.String("pid", p.pid.ID))
	}
}

func (p *process) run() {
	defer func() {
		p.stopped = true
		p.invokeReceive(Stopped{}, nil, nil)
		p.engine.remove(p.pid)
	}()

	defer func() {
		if r := recover(); r != nil {
			p.engine.logger().Error("actor panic",
				zap.String("pid", p.pid.ID),
				zap.Any("recover", r),
				zap.String("stack", string(debug.Stack())))
			p.stopped = true
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic("actorkit: producer returned nil actor")
	}

	for {
		select {
		case <-p.stopCh:
			return
		case envelope := <-p.mailbox:
			if p.stopped {
				continue
			}
			switch msg := envelope.Message.(type) {
			case Started:
				p.invokeReceive(msg, envelope.Sender, envelope.ReplyTo)
			case Stopping:
				p.stopped = true
				p.invokeReceive(msg, envelope.Sender, envelope.ReplyTo)
				p.closeStopCh()
			case Stopped:
				p.stopped = true
				p.invokeReceive(msg, envelope.Sender, envelope.ReplyTo)
				p.closeStopCh()
			default:
				p.invokeReceive(envelope.Message, envelope.Sender, envelope.ReplyTo)
			}
		}
	}
}

func (p *process) closeStopCh() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
}

func (p *process) invokeReceive(msg interface{}, sender *PID, replyTo chan interface{}) {
	ctx := &context{
		engine:  p.engine,
		self:    p.pid,
		sender:  sender,
		message: msg,
		replyTo: replyTo,
	}
	p.actor.Receive(ctx)
}
