package bundling

import (
	"encoding/json"
	"fmt"
	"time"
)

// BundleID identifies which in-flight bundle a scheduled request joins.
// It is an opaque key computed from the request's discriminator fields.
type BundleID string

// APICall is the combined call performed once per bundle. It receives the
// merged request and returns the combined response, or an error. The engine
// never inspects the error beyond forwarding it to every joined caller.
type APICall func(req interface{}) (interface{}, error)

// Descriptor describes the structure of a bundled call.
type Descriptor struct {
	// BundledField is the name of the request field holding the list of
	// individual messages to merge.
	BundledField string

	// SubresponseField optionally names the response field holding
	// per-message sub-results. When set, the combined response is
	// demultiplexed back into per-caller slices.
	SubresponseField string

	// DiscriminatorFields are the request fields (dotted paths allowed)
	// used by ComputeBundleID.
	DiscriminatorFields []string
}

// Options configures when a bundle fires. A threshold of zero or below
// disables that trigger.
type Options struct {
	MessageCountThreshold    int
	MessageBytesizeThreshold int
	DelayThreshold           time.Duration
}

// SizeEstimator reports the approximate size in bytes of a single bundled
// message, used against Options.MessageBytesizeThreshold.
type SizeEstimator func(msg interface{}) int

// defaultSizeEstimate measures a message by its JSON encoding.
func defaultSizeEstimate(msg interface{}) int {
	if b, err := json.Marshal(msg); err == nil {
		return len(b)
	}
	return len(fmt.Sprintf("%v", msg))
}
