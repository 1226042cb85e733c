package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	noTrigger := cfg.Bundling.MessageCountThreshold == 0 &&
		cfg.Bundling.MessageBytesizeThreshold == 0 &&
		cfg.Bundling.DelayThreshold == 0
	if noTrigger {
		// With every trigger disabled nothing would ever fire.
		cfg.Bundling.MessageCountThreshold = DefaultMessageCountThreshold
		cfg.Bundling.DelayThreshold = DefaultDelayThreshold
	}

	if cfg.Workload != nil {
		if cfg.Workload.Callers == 0 {
			cfg.Workload.Callers = DefaultWorkloadCallers
		}
		if cfg.Workload.GroupSize == 0 {
			cfg.Workload.GroupSize = DefaultWorkloadGroupSize
		}
		if cfg.Workload.Bundles == 0 {
			cfg.Workload.Bundles = DefaultWorkloadBundles
		}
	}
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Bundling.MessageCountThreshold < 0 {
		return fmt.Errorf("bundling.messageCountThreshold must be non-negative")
	}
	if cfg.Bundling.MessageBytesizeThreshold < 0 {
		return fmt.Errorf("bundling.messageBytesizeThreshold must be non-negative")
	}
	if cfg.Bundling.DelayThreshold < 0 {
		return fmt.Errorf("bundling.delayThreshold must be non-negative")
	}

	if cfg.Workload != nil {
		if cfg.Workload.Callers < 0 {
			return fmt.Errorf("workload.callers must be non-negative")
		}
		if cfg.Workload.GroupSize < 0 {
			return fmt.Errorf("workload.groupSize must be non-negative")
		}
		if cfg.Workload.Bundles < 0 {
			return fmt.Errorf("workload.bundles must be non-negative")
		}
	}

	return nil
}
