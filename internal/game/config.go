package game

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RoomTuning holds the per-room replacements for the blocked and bump policy.
// Zero fields fall back to the global value.
type RoomTuning struct {
	BlockedRetries    int `yaml:"blocked_retries"`
	BlockedPauseTicks int `yaml:"blocked_pause_ticks"`
	BumpPauseTicks    int `yaml:"bump_pause_ticks"`
}

// Config holds the engine tuning constants.
type Config struct {
	PathBudget            int `yaml:"path_budget"`
	PathSetupCost         int `yaml:"path_setup_cost"`
	RingScanRadius        int `yaml:"ring_scan_radius"`
	BlockedRetries        int `yaml:"blocked_retries"`
	BlockedPauseTicks     int `yaml:"blocked_pause_ticks"`
	BumpPauseTicks        int `yaml:"bump_pause_ticks"`
	RandomDestTries       int `yaml:"random_dest_tries"`
	ActionRetryLimit      int `yaml:"action_retry_limit"`
	WalkArriveTolerance   int `yaml:"walk_arrive_tolerance"`
	VoiceBubbleTicks      int `yaml:"voice_bubble_ticks"`
	DoorFrameTicks        int `yaml:"door_frame_ticks"`
	MaterializeNudgeTries int `yaml:"materialize_nudge_tries"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	RoomOverrides map[RoomID]RoomTuning `yaml:"room_overrides"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		PathBudget:            4000,
		PathSetupCost:         700,
		RingScanRadius:        6,
		BlockedRetries:        5,
		BlockedPauseTicks:     5,
		BumpPauseTicks:        6,
		RandomDestTries:       20,
		ActionRetryLimit:      4,
		WalkArriveTolerance:   8,
		VoiceBubbleTicks:      60,
		DoorFrameTicks:        1,
		MaterializeNudgeTries: 4,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// ParseConfig decodes YAML over the defaults. Unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every tunable is in range.
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    int
		min  int
	}{
		{"path_budget", c.PathBudget, 1},
		{"path_setup_cost", c.PathSetupCost, 0},
		{"ring_scan_radius", c.RingScanRadius, 0},
		{"blocked_retries", c.BlockedRetries, 0},
		{"blocked_pause_ticks", c.BlockedPauseTicks, 0},
		{"bump_pause_ticks", c.BumpPauseTicks, 0},
		{"random_dest_tries", c.RandomDestTries, 1},
		{"action_retry_limit", c.ActionRetryLimit, 0},
		{"walk_arrive_tolerance", c.WalkArriveTolerance, 0},
		{"voice_bubble_ticks", c.VoiceBubbleTicks, 1},
		{"door_frame_ticks", c.DoorFrameTicks, 1},
		{"materialize_nudge_tries", c.MaterializeNudgeTries, 0},
	}
	for _, ch := range checks {
		if ch.v < ch.min {
			return fmt.Errorf("config: %s = %d, must be >= %d", ch.name, ch.v, ch.min)
		}
	}
	for room, o := range c.RoomOverrides {
		if o.BlockedRetries < 0 || o.BlockedPauseTicks < 0 || o.BumpPauseTicks < 0 {
			return fmt.Errorf("config: room_overrides[%d] has a negative value", room)
		}
	}
	return nil
}

// ForRoom returns the blocked and bump tuning in effect for room.
func (c Config) ForRoom(room RoomID) RoomTuning {
	t := RoomTuning{
		BlockedRetries:    c.BlockedRetries,
		BlockedPauseTicks: c.BlockedPauseTicks,
		BumpPauseTicks:    c.BumpPauseTicks,
	}
	o, ok := c.RoomOverrides[room]
	if !ok {
		return t
	}
	if o.BlockedRetries != 0 {
		t.BlockedRetries = o.BlockedRetries
	}
	if o.BlockedPauseTicks != 0 {
		t.BlockedPauseTicks = o.BlockedPauseTicks
	}
	if o.BumpPauseTicks != 0 {
		t.BumpPauseTicks = o.BumpPauseTicks
	}
	return t
}
