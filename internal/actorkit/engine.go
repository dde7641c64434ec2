package actorkit

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrTimeout is returned by Ask when no reply arrives within the deadline.
var ErrTimeout = errors.New("actorkit: ask timed out")

// Engine owns every live actor's mailbox goroutine and the PID-to-process
// directory used to route messages.
type Engine struct {
	pidCounter uint64
	actors     map[string]*process
	mu         sync.RWMutex
	stopping   atomic.Bool
	log        *zap.Logger
}

// NewEngine creates an engine that logs to a no-op logger. Use
// NewEngineWithLogger to wire real structured logging.
func NewEngine() *Engine {
	return NewEngineWithLogger(zap.NewNop())
}

// NewEngineWithLogger creates an engine that reports mailbox drops, panics,
// and shutdown progress through the given logger.
func NewEngineWithLogger(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		actors: make(map[string]*process),
		log:    logger,
	}
}

func (e *Engine) logger() *zap.Logger { return e.log }

func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

// Spawn creates and starts a new actor, returning its PID.
func (e *Engine) Spawn(props *Props) *PID {
	if e.stopping.Load() {
		e.log.Warn("engine is stopping, refusing to spawn")
		return nil
	}

	pid := e.nextPID()
	proc := newProcess(e, pid, props)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	go proc.run()
	e.Send(pid, Started{}, nil)

	return pid
}

// Send delivers a fire-and-forget message to pid. Sender may be nil.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	if pid == nil {
		return
	}
	e.dispatch(pid, &messageEnvelope{Sender: sender, Message: message})
}

// Ask delivers message to pid and blocks until the actor calls
// Context.Respond or timeout elapses (returning ErrTimeout). It returns an
// error at once if the engine has no process for pid at dispatch time.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if pid == nil {
		return nil, errors.New("actorkit: ask on nil pid")
	}
	reply := make(chan interface{}, 1)
	if !e.dispatch(pid, &messageEnvelope{Message: message, ReplyTo: reply}) {
		return nil, fmt.Errorf("actorkit: actor %s not found", pid.ID)
	}
	select {
	case v := <-reply:
		return v, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

func (e *Engine) dispatch(pid *PID, envelope *messageEnvelope) bool {
	isSystemMsg := false
	switch envelope.Message.(type) {
	case Started, Stopping, Stopped:
		isSystemMsg = true
	}
	if e.stopping.Load() && !isSystemMsg {
		return false
	}

	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()

	if !ok {
		return false
	}
	proc.sendMessage(envelope)
	return true
}

// Stop asks an actor to shut down: it sends Stopping so the actor can run
// cleanup, and also force-closes its stop channel so a full mailbox can
// never block termination.
func (e *Engine) Stop(pid *PID) {
	if pid == nil {
		return
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if !ok {
		return
	}

	e.Send(pid, Stopping{}, nil)
	proc.closeStopCh()
}

func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// Shutdown stops every live actor and waits up to timeout for them to exit.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		return
	}

	e.mu.RLock()
	pids := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pids = append(pids, proc.pid)
	}
	e.mu.RUnlock()

	for _, pid := range pids {
		e.Stop(pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.mu.RLock()
		remaining := len(e.actors)
		e.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}

	e.mu.Lock()
	remaining := len(e.actors)
	if remaining > 0 {
		e.log.Warn("engine shutdown timed out with actors still running", zap.Int("remaining", remaining))
		e.actors = make(map[string]*process)
	}
	e.mu.Unlock()
}
