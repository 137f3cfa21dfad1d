package config

import (
	"fmt"
	"regexp"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Validate checks if the configuration is valid and fills in defaults
func Validate(cfg *Config) error {
	// Validate instance_id
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	// Camera defaults
	if cfg.Camera.Resolution == "" {
		cfg.Camera.Resolution = "480p"
	}
	if cfg.Camera.FPS <= 0 {
		cfg.Camera.FPS = 15
	}

	// Pipeline defaults and bounds
	if cfg.Pipeline.HistoryDepth == 0 {
		cfg.Pipeline.HistoryDepth = 5
	}
	if cfg.Pipeline.HistoryDepth < 2 {
		return fmt.Errorf("pipeline.history_depth must be >= 2, got %d", cfg.Pipeline.HistoryDepth)
	}
	if cfg.Pipeline.Quorum == 0 {
		cfg.Pipeline.Quorum = cfg.Pipeline.HistoryDepth - 1
	}
	if cfg.Pipeline.Quorum < 1 || cfg.Pipeline.Quorum > cfg.Pipeline.HistoryDepth {
		return fmt.Errorf("pipeline.quorum must be in [1, history_depth], got %d", cfg.Pipeline.Quorum)
	}
	if cfg.Pipeline.RejectDistance < 0 {
		return fmt.Errorf("pipeline.reject_distance must be >= 0")
	}
	if cfg.Pipeline.MinValue < 0 || cfg.Pipeline.MinValue >= 1 {
		return fmt.Errorf("pipeline.min_value must be in [0, 1)")
	}

	// MQTT is optional: empty broker disables publishing
	if cfg.MQTT.Broker != "" {
		if cfg.MQTT.Topics.Faces == "" {
			cfg.MQTT.Topics.Faces = fmt.Sprintf("cube/faces/%s", cfg.InstanceID)
		}
		if cfg.MQTT.Topics.Complete == "" {
			cfg.MQTT.Topics.Complete = fmt.Sprintf("cube/complete/%s", cfg.InstanceID)
		}
		if cfg.MQTT.Topics.Health == "" {
			cfg.MQTT.Topics.Health = fmt.Sprintf("cube/health/%s", cfg.InstanceID)
		}
		if cfg.MQTT.QoS == nil {
			cfg.MQTT.QoS = map[string]byte{
				"faces":    1,
				"complete": 1,
				"health":   0,
			}
		}
	}

	return nil
}

// ParseResolution converts a resolution string to width/height. Unknown
// values fall back to 640x480.
func ParseResolution(res string) (width, height int) {
	switch res {
	case "320p":
		return 426, 320
	case "480p":
		return 640, 480
	case "720p":
		return 1280, 720
	case "1080p":
		return 1920, 1080
	default:
		return 640, 480
	}
}
