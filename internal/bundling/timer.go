package bundling

import "time"

// TimerHandle is a started one-shot timer. Stop reports whether the timer
// was stopped before its callback ran.
type TimerHandle interface {
	Stop() bool
}

// TimerFactory creates one-shot timers. The Executor takes its timer from a
// factory so tests can substitute a deterministic implementation.
type TimerFactory interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

type stdTimerFactory struct{}

func (stdTimerFactory) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}

// StdTimerFactory returns the default TimerFactory backed by time.AfterFunc.
func StdTimerFactory() TimerFactory {
	return stdTimerFactory{}
}
