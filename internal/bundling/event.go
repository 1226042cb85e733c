package bundling

import (
	"sync"
	"time"
)

// Event is the completion handle returned to each caller that joins a
// bundle. It starts pending and is fulfilled exactly once with either the
// distributed response or an error, when the owning task fires.
type Event struct {
	mu        sync.Mutex
	done      chan struct{}
	fulfilled bool
	result    interface{}
	canceller func() bool
}

func newEvent(canceller func() bool) *Event {
	return &Event{
		done:      make(chan struct{}),
		canceller: canceller,
	}
}

// Done returns a channel that is closed when the event is fulfilled.
func (e *Event) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Wait blocks until the event is fulfilled or timeout elapses, and reports
// whether the event was fulfilled. A timeout of zero or below blocks
// indefinitely.
func (e *Event) Wait(timeout time.Duration) bool {
	done := e.Done()
	if timeout <= 0 {
		<-done
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return e.IsFulfilled()
	}
}

// IsFulfilled reports whether the event has been fulfilled.
func (e *Event) IsFulfilled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fulfilled
}

// Result returns the fulfilled value: the distributed response, or an
// error value if the combined call failed. Nil while pending.
func (e *Event) Result() interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Err returns the result as an error if the combined call failed, nil
// otherwise.
func (e *Event) Err() error {
	if err, ok := e.Result().(error); ok {
		return err
	}
	return nil
}

// Fulfill sets the result and marks the event fulfilled, waking all
// waiters. Fulfilling an already fulfilled event is a no-op.
func (e *Event) Fulfill(result interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fulfilled {
		return
	}
	e.result = result
	e.fulfilled = true
	close(e.done)
}

// Reset clears the result and returns the event to pending. It does not
// re-join a cancelled contribution to its task.
func (e *Event) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.result = nil
	if e.fulfilled {
		e.fulfilled = false
		e.done = make(chan struct{})
	}
}

// Cancel withdraws this caller's messages from the owning task. It returns
// true if the messages were removed before the task fired, false if the
// task had already consumed them or no canceller is bound. After a
// successful cancel the event is never fulfilled by that task.
func (e *Event) Cancel() bool {
	if e.canceller == nil {
		return false
	}
	return e.canceller()
}
