package config

import "time"

// Config represents the main configuration structure for the demo binary.
type Config struct {
	LogLevel string          `json:"logLevel"`
	Bundling BundlingConfig  `json:"bundling"`
	Workload *WorkloadConfig `json:"workload,omitempty"`
}

// BundlingConfig configures the bundle executor thresholds. A value of
// zero disables that trigger.
type BundlingConfig struct {
	MessageCountThreshold    int `json:"messageCountThreshold"`
	MessageBytesizeThreshold int `json:"messageBytesizeThreshold"`
	DelayThreshold           int `json:"delayThreshold"` // ms
}

// WorkloadConfig configures the synthetic demo workload.
type WorkloadConfig struct {
	Callers   int `json:"callers"`   // concurrent scheduling goroutines
	GroupSize int `json:"groupSize"` // messages contributed per call
	Bundles   int `json:"bundles"`   // distinct bundle ids used
}

// Default values
const (
	DefaultLogLevel              = "info"
	DefaultMessageCountThreshold = 10
	DefaultDelayThreshold        = 100 // ms
	DefaultWorkloadCallers       = 8
	DefaultWorkloadGroupSize     = 2
	DefaultWorkloadBundles       = 3
)

// GetDelayThresholdDuration returns the delay threshold as time.Duration.
func (c *BundlingConfig) GetDelayThresholdDuration() time.Duration {
	return time.Duration(c.DelayThreshold) * time.Millisecond
}
