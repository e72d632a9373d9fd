package game

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadConfig_TuningFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PathBudget != DefaultConfig().PathBudget {
		t.Fatalf("path_budget=%d", cfg.PathBudget)
	}
	narrow := cfg.ForRoom(35)
	if narrow.BlockedRetries != 10 || narrow.BlockedPauseTicks != 10 {
		t.Fatalf("room 35 override not applied: %+v", narrow)
	}
	// Unset override fields fall back to the global value.
	if narrow.BumpPauseTicks != cfg.BumpPauseTicks {
		t.Fatalf("bump pause should fall back, got %d", narrow.BumpPauseTicks)
	}
	if other := cfg.ForRoom(1); other.BlockedRetries != cfg.BlockedRetries {
		t.Fatalf("room 1 should use the global tuning, got %+v", other)
	}
}

func TestParseConfig_PartialKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("path_budget: 50\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PathBudget != 50 || cfg.RingScanRadius != DefaultConfig().RingScanRadius {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if _, err := ParseConfig(nil); err != nil {
		t.Fatalf("empty document should give defaults, got %v", err)
	}
}

func TestParseConfig_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "path_bugdet: 10\n",
		"out of range":      "path_budget: 0\n",
		"negative override": "room_overrides:\n  3:\n    blocked_retries: -1\n",
	}
	for name, doc := range cases {
		if _, err := ParseConfig([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	_, err := ParseConfig([]byte("path_budget: 0\n"))
	if err == nil || !strings.Contains(err.Error(), "path_budget") {
		t.Fatalf("error should name the key, got %v", err)
	}
}
