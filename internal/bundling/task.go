package bundling

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"reqbundler/internal/field"
)

// entry pairs one caller's message group with its completion handle. The
// pairing is by identity, so cancellation removes exactly the caller's own
// contribution even when an equal group is queued elsewhere.
type entry struct {
	msgs  []interface{}
	event *Event
}

// Task accumulates the message groups for one bundle id and performs the
// combined call exactly once, distributing the outcome to every joined
// event.
type Task struct {
	ID BundleID

	call             APICall
	bundledField     string
	subresponseField string
	template         interface{}
	estimate         SizeEstimator
	logger           zerolog.Logger

	mu      sync.Mutex
	entries []*entry
	fired   bool
}

// NewTask creates a task for one bundle. template is the combined-request
// object whose bundled field receives the merged messages when the task
// runs.
func NewTask(call APICall, id BundleID, desc Descriptor, template interface{}, estimate SizeEstimator, logger zerolog.Logger) *Task {
	if estimate == nil {
		estimate = defaultSizeEstimate
	}
	return &Task{
		ID:               id,
		call:             call,
		bundledField:     desc.BundledField,
		subresponseField: desc.SubresponseField,
		template:         template,
		estimate:         estimate,
		logger:           logger,
	}
}

// Extend appends a message group to the task and returns the event that
// will carry this caller's share of the outcome. The event's canceller
// removes exactly this contribution, by identity.
func (t *Task) Extend(msgs []interface{}) *Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	en := &entry{msgs: msgs}
	en.event = newEvent(t.cancellerFor(en))
	t.entries = append(t.entries, en)
	return en.event
}

func (t *Task) cancellerFor(target *entry) func() bool {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.fired {
			return false
		}
		for i, en := range t.entries {
			if en == target {
				t.entries = append(t.entries[:i], t.entries[i+1:]...)
				return true
			}
		}
		return false
	}
}

// MessageCount returns the total number of queued messages across all
// joined groups.
func (t *Task) MessageCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, en := range t.entries {
		n += len(en.msgs)
	}
	return n
}

// MessageBytesize returns the estimated total size of all queued messages.
func (t *Task) MessageBytesize() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := 0
	for _, en := range t.entries {
		for _, m := range en.msgs {
			size += t.estimate(m)
		}
	}
	return size
}

// Run performs the combined call and distributes the outcome. It drains
// the task exactly once; a second Run, or a Run on an empty task, is a
// no-op. Failures of the combined call never propagate: they are delivered
// as the result of every joined event. The returned error is the call
// failure, if any, for bookkeeping only.
func (t *Task) Run() error {
	t.mu.Lock()
	if t.fired || len(t.entries) == 0 {
		t.fired = true
		t.mu.Unlock()
		return nil
	}
	t.fired = true
	entries := t.entries
	t.entries = nil
	t.mu.Unlock()

	total := 0
	combined := make([]interface{}, 0)
	for _, en := range entries {
		combined = append(combined, en.msgs...)
		total += len(en.msgs)
	}

	req := t.template
	if err := field.Set(req, t.bundledField, combined); err != nil {
		deliverAll(entries, err)
		return err
	}

	resp, err := t.safeCall(req)
	if err != nil {
		deliverAll(entries, err)
		return err
	}

	if t.subresponseField == "" {
		deliverAll(entries, resp)
		return nil
	}
	t.demux(entries, resp, total)
	return nil
}

// safeCall invokes the combined call, converting panics into errors so a
// failing call can never take down the executor or its timer.
func (t *Task) safeCall(req interface{}) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("combined call panicked: %v", r)
		}
	}()
	return t.call(req)
}

// demux splits the combined response's subresponse field into contiguous
// per-caller slices in join order. On any shape mismatch it degrades to
// delivering the whole response to every caller.
func (t *Task) demux(entries []*entry, resp interface{}, total int) {
	raw, err := field.Resolve(resp, t.subresponseField)
	if err != nil {
		deliverAll(entries, err)
		return
	}

	rv := reflect.ValueOf(raw)
	if raw == nil || rv.Kind() != reflect.Slice {
		deliverAll(entries, fmt.Errorf("subresponse field %q is not a slice", t.subresponseField))
		return
	}

	if rv.Len() != total {
		t.logger.Warn().
			Str("bundleId", string(t.ID)).
			Int("got", rv.Len()).
			Int("want", total).
			Msg("cannot demultiplex bundled response, each caller receives all subresponses")
		deliverAll(entries, resp)
		return
	}

	start := 0
	for _, en := range entries {
		chunk := rv.Slice(start, start+len(en.msgs)).Interface()
		start += len(en.msgs)

		cp := field.ShallowCopy(resp)
		if err := field.Set(cp, t.subresponseField, chunk); err != nil {
			en.event.Fulfill(err)
			continue
		}
		en.event.Fulfill(cp)
	}
}

func deliverAll(entries []*entry, result interface{}) {
	for _, en := range entries {
		en.event.Fulfill(result)
	}
}
