package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete scanner configuration
type Config struct {
	InstanceID       string         `yaml:"instance_id"`
	ShutdownTimeoutS int            `yaml:"shutdown_timeout_s"` // Graceful shutdown timeout in seconds (default: 5)
	Camera           CameraConfig   `yaml:"camera"`
	Pipeline         PipelineConfig `yaml:"pipeline"`
	MQTT             MQTTConfig     `yaml:"mqtt"`
}

// CameraConfig contains capture settings
type CameraConfig struct {
	// Source is an rtsp:// URL or a v4l2 device path (/dev/video0).
	// Empty selects the mock stream.
	Source     string `yaml:"source"`
	Resolution string `yaml:"resolution"` // 480p, 720p, 1080p
	FPS        int    `yaml:"fps"`
}

// PipelineConfig contains detection pipeline tuning
type PipelineConfig struct {
	HistoryDepth   int     `yaml:"history_depth"`   // stabilizer rolling history capacity N
	Quorum         int     `yaml:"quorum"`          // agreeing frames required per position (default N-1)
	RejectDistance float64 `yaml:"reject_distance"` // classifier rejection threshold
	MinValue       float64 `yaml:"min_value"`       // classifier brightness gate
}

// MQTTConfig contains MQTT broker settings. An empty broker disables
// publishing entirely.
type MQTTConfig struct {
	Broker string          `yaml:"broker"`
	Topics MQTTTopics      `yaml:"topics"`
	QoS    map[string]byte `yaml:"qos"`
}

// MQTTTopics contains topic templates
type MQTTTopics struct {
	Faces    string `yaml:"faces"`
	Complete string `yaml:"complete"`
	Health   string `yaml:"health"`
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
