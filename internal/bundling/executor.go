package bundling

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"reqbundler/internal/field"
)

// Trigger values recorded in the firing history.
const (
	TriggerCount = "count"
	TriggerBytes = "bytes"
	TriggerDelay = "delay"
	TriggerFlush = "flush"
)

// historySize bounds the executor's firing history.
const historySize = 128

// Firing records the outcome of one fired bundle.
type Firing struct {
	Messages int
	Bytes    int
	Trigger  string
	Failed   bool
	FiredAt  time.Time
}

// Executor organizes bundling. It keys live tasks by bundle id, applies
// count/size/delay thresholds to decide when a task fires, and owns a
// single shared delay timer.
type Executor struct {
	opts     Options
	timers   TimerFactory
	estimate SizeEstimator
	logger   zerolog.Logger

	mu      sync.Mutex
	tasks   map[BundleID]*Task
	timer   TimerHandle
	history *lru.Cache[BundleID, Firing]
}

// NewExecutor creates an executor with the given bundling options.
func NewExecutor(opts Options, logger zerolog.Logger) *Executor {
	history, _ := lru.New[BundleID, Firing](historySize)
	return &Executor{
		opts:     opts,
		timers:   StdTimerFactory(),
		estimate: defaultSizeEstimate,
		logger:   logger.With().Str("component", "bundler").Logger(),
		tasks:    make(map[BundleID]*Task),
		history:  history,
	}
}

// SetTimerFactory replaces the delay-timer implementation. Call before the
// first Schedule.
func (e *Executor) SetTimerFactory(timers TimerFactory) {
	e.timers = timers
}

// SetSizeEstimator replaces the per-message size estimate used against the
// byte-size threshold. Call before the first Schedule.
func (e *Executor) SetSizeEstimator(estimate SizeEstimator) {
	e.estimate = estimate
}

// Schedule adds the message group found on req's bundled field to the
// bundle identified by id, creating a new task if none is live. It returns
// the event carrying this caller's share of the outcome.
//
// If a count or size threshold is reached by this contribution, the bundle
// fires synchronously before Schedule returns. A delay threshold fires the
// bundle from the shared timer instead.
func (e *Executor) Schedule(call APICall, id BundleID, desc Descriptor, req interface{}) (*Event, error) {
	e.mu.Lock()

	task := e.tasks[id]
	if task == nil {
		task = NewTask(call, id, desc, field.ShallowCopy(req), e.estimate, e.logger)
		e.tasks[id] = task
		if e.opts.DelayThreshold > 0 && e.timer == nil {
			e.timer = e.timers.AfterFunc(e.opts.DelayThreshold, func() {
				e.timerFire(id)
			})
		}
	}

	raw, err := field.Resolve(req, desc.BundledField)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	msgs, ok := field.ToSlice(raw)
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("bundled field %q is not a slice", desc.BundledField)
	}

	event := task.Extend(msgs)

	trigger := ""
	if n := e.opts.MessageCountThreshold; n > 0 && task.MessageCount() >= n {
		trigger = TriggerCount
	} else if n := e.opts.MessageBytesizeThreshold; n > 0 && task.MessageBytesize() >= n {
		trigger = TriggerBytes
	}

	var fire *Task
	if trigger != "" {
		delete(e.tasks, id)
		fire = task
	}
	e.mu.Unlock()

	if fire != nil {
		e.runTask(fire, trigger)
	}
	return event, nil
}

// timerFire is the shared timer's callback. It clears the timer slot so a
// later fresh task can arm it again, then fires the bundle if it is still
// live.
func (e *Executor) timerFire(id BundleID) {
	e.mu.Lock()
	e.timer = nil
	task := e.tasks[id]
	if task != nil {
		delete(e.tasks, id)
	}
	e.mu.Unlock()

	if task != nil {
		e.runTask(task, TriggerDelay)
	}
}

// Fire removes the bundle for id from the registry and runs it. Firing an
// id with no live task is a no-op, which makes races between the timer and
// threshold firing harmless.
func (e *Executor) Fire(id BundleID) {
	e.mu.Lock()
	task := e.tasks[id]
	if task != nil {
		delete(e.tasks, id)
	}
	e.mu.Unlock()

	if task != nil {
		e.runTask(task, TriggerFlush)
	}
}

// FlushAll fires every pending bundle and disarms the shared timer. Used
// for graceful shutdown.
func (e *Executor) FlushAll() {
	e.mu.Lock()
	tasks := make([]*Task, 0, len(e.tasks))
	for id, task := range e.tasks {
		tasks = append(tasks, task)
		delete(e.tasks, id)
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	for _, task := range tasks {
		e.runTask(task, TriggerFlush)
	}
}

// Pending returns the number of live bundles.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// History returns the recorded firing for id, if it is still within the
// bounded history window.
func (e *Executor) History(id BundleID) (Firing, bool) {
	return e.history.Get(id)
}

// runTask executes a task outside the registry lock and records the firing.
func (e *Executor) runTask(task *Task, trigger string) {
	messages := task.MessageCount()
	bytes := task.MessageBytesize()

	err := task.Run()

	e.history.Add(task.ID, Firing{
		Messages: messages,
		Bytes:    bytes,
		Trigger:  trigger,
		Failed:   err != nil,
		FiredAt:  time.Now(),
	})

	evt := e.logger.Debug()
	if err != nil {
		evt = e.logger.Error().Err(err)
	}
	evt.
		Str("bundleId", string(task.ID)).
		Str("trigger", trigger).
		Int("messages", messages).
		Int("bytes", bytes).
		Msg("bundle fired")
}
