package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadAppliesDefaults verifies a minimal config gets defaults for
// camera, pipeline and MQTT topics.
func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
instance_id: scanner-1
mqtt:
  broker: localhost:1883
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Camera.FPS != 15 {
		t.Errorf("fps default = %d, want 15", cfg.Camera.FPS)
	}
	if cfg.Pipeline.HistoryDepth != 5 {
		t.Errorf("history_depth default = %d, want 5", cfg.Pipeline.HistoryDepth)
	}
	if cfg.MQTT.Topics.Faces != "cube/faces/scanner-1" {
		t.Errorf("faces topic = %q", cfg.MQTT.Topics.Faces)
	}
	if cfg.MQTT.QoS["faces"] != 1 {
		t.Errorf("faces qos = %d, want 1", cfg.MQTT.QoS["faces"])
	}
}

// TestValidateRejectsBadInstanceID verifies the instance_id pattern check.
func TestValidateRejectsBadInstanceID(t *testing.T) {
	path := writeConfig(t, `
instance_id: "Scanner One"
`)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "instance_id") {
		t.Fatalf("expected instance_id error, got %v", err)
	}
}

// TestQuorumDefaultsToDepthMinusOne verifies the default quorum policy is
// N−1-of-N.
func TestQuorumDefaultsToDepthMinusOne(t *testing.T) {
	path := writeConfig(t, `
instance_id: scanner-1
pipeline:
  history_depth: 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Pipeline.Quorum != 6 {
		t.Errorf("quorum default = %d, want 6", cfg.Pipeline.Quorum)
	}
}

// TestValidateRejectsBadQuorum verifies the quorum cannot exceed the history
// depth.
func TestValidateRejectsBadQuorum(t *testing.T) {
	path := writeConfig(t, `
instance_id: scanner-1
pipeline:
  history_depth: 3
  quorum: 4
`)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "quorum") {
		t.Fatalf("expected quorum error, got %v", err)
	}
}

// TestParseResolution verifies resolution mapping and the fallback.
func TestParseResolution(t *testing.T) {
	if w, h := ParseResolution("720p"); w != 1280 || h != 720 {
		t.Errorf("720p = %dx%d", w, h)
	}
	if w, h := ParseResolution("bogus"); w != 640 || h != 480 {
		t.Errorf("fallback = %dx%d, want 640x480", w, h)
	}
}
