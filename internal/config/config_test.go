package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Bundling.MessageCountThreshold != DefaultMessageCountThreshold {
		t.Errorf("MessageCountThreshold = %d, want %d",
			cfg.Bundling.MessageCountThreshold, DefaultMessageCountThreshold)
	}
	if cfg.Bundling.DelayThreshold != DefaultDelayThreshold {
		t.Errorf("DelayThreshold = %d, want %d",
			cfg.Bundling.DelayThreshold, DefaultDelayThreshold)
	}
}

func TestLoad_ExplicitTriggerKeepsOthersDisabled(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"bundling":{"messageCountThreshold":5}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Bundling.MessageCountThreshold != 5 {
		t.Errorf("MessageCountThreshold = %d, want 5", cfg.Bundling.MessageCountThreshold)
	}
	if cfg.Bundling.DelayThreshold != 0 {
		t.Errorf("DelayThreshold = %d, want 0 (disabled)", cfg.Bundling.DelayThreshold)
	}
}

func TestLoad_WorkloadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"workload":{"callers":4}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Workload.Callers != 4 {
		t.Errorf("Callers = %d, want 4", cfg.Workload.Callers)
	}
	if cfg.Workload.GroupSize != DefaultWorkloadGroupSize {
		t.Errorf("GroupSize = %d, want %d", cfg.Workload.GroupSize, DefaultWorkloadGroupSize)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	if _, err := Load(writeConfig(t, `{"logLevel":"verbose"}`)); err == nil {
		t.Fatal("Load accepted an invalid log level")
	}
}

func TestLoad_NegativeThreshold(t *testing.T) {
	if _, err := Load(writeConfig(t, `{"bundling":{"delayThreshold":-1}}`)); err == nil {
		t.Fatal("Load accepted a negative delay threshold")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, `{`)); err == nil {
		t.Fatal("Load accepted malformed JSON")
	}
}

func TestGetDelayThresholdDuration(t *testing.T) {
	cfg := BundlingConfig{DelayThreshold: 250}
	if got := cfg.GetDelayThresholdDuration(); got != 250*time.Millisecond {
		t.Errorf("GetDelayThresholdDuration = %v, want 250ms", got)
	}
}
