// Package bundling merges multiple logical API call requests that share a
// bundle id into a single combined call, and fans the single response (or
// error) back out to every original caller.
//
// Callers hand the Executor a combined-call function, a bundle id and a
// request holding a group of messages. The Executor accumulates message
// groups per bundle id in a Task and fires the Task once a message-count,
// byte-size or delay threshold is crossed. Each caller receives an Event
// that can be waited on for the outcome, or cancelled to withdraw the
// caller's messages before the bundle fires.
//
// When a subresponse field is configured, the combined response is split
// back into contiguous per-caller slices in join order, so every caller
// sees only its own subresponses.
package bundling
