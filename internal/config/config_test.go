package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ericogr/arena-engine/internal/economy"
	"github.com/ericogr/arena-engine/internal/game"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena_config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const validConfig = `{
	"resource_types": [
		{"name": "stamina", "display_name": "Stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 180000},
		{"name": "mana", "default_max": 10, "strategy": "incremental", "interval_ms": 3600000, "amount": 2},
		{"name": "raids", "default_max": 4, "strategy": "charges", "interval_ms": 43200000}
	],
	"items": [
		{"id": "spear", "name": "Spear", "attack_value": 25, "consumable": true},
		{"id": "shield", "name": "Shield", "defense_value": 50},
		{"id": "ration", "name": "Ration", "good_outcome_value": 10, "bad_outcome_value": -5}
	],
	"round": {"good_event_probability": 0.7, "reservation_policy": "freeze"},
	"server": {"address": ":9090"}
}`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.ResourceTypes) != 3 || len(cfg.Items) != 3 {
		t.Fatalf("unexpected content counts: %d types, %d items", len(cfg.ResourceTypes), len(cfg.Items))
	}
	stamina := cfg.ResourceTypes[0]
	if stamina.Strategy != game.RegenFullReset || stamina.Interval != 3*time.Minute {
		t.Fatalf("unexpected stamina config: %+v", stamina)
	}
	if cfg.GoodEventProbability != 0.7 {
		t.Fatalf("expected probability 0.7, got %v", cfg.GoodEventProbability)
	}
	if cfg.ReservationPolicy != economy.ReservationFreeze {
		t.Fatalf("expected freeze policy, got %q", cfg.ReservationPolicy)
	}
	if cfg.ServerAddress != ":9090" {
		t.Fatalf("expected address :9090, got %q", cfg.ServerAddress)
	}
	if cfg.BoostResource != "stamina" {
		t.Fatalf("expected default boost resource, got %q", cfg.BoostResource)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{
		"resource_types": [{"name": "stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 180000}],
		"items": [{"id": "spear", "attack_value": 25}]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GoodEventProbability != 0.5 {
		t.Fatalf("expected default probability 0.5, got %v", cfg.GoodEventProbability)
	}
	if cfg.ReservationPolicy != economy.ReservationTruncate {
		t.Fatalf("expected default truncate policy, got %q", cfg.ReservationPolicy)
	}
	if cfg.ServerAddress == "" {
		t.Fatal("expected a default server address")
	}
}

func TestLoadConfigRejectsBadContent(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			"no resource types",
			`{"resource_types": [], "items": [{"id": "spear", "attack_value": 1}]}`,
			"resource_types is empty",
		},
		{
			"no items",
			`{"resource_types": [{"name": "stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 1000}], "items": []}`,
			"items is empty",
		},
		{
			"unknown strategy",
			`{"resource_types": [{"name": "stamina", "default_max": 5, "strategy": "hourly", "interval_ms": 1000}], "items": [{"id": "spear", "attack_value": 1}]}`,
			"unknown strategy",
		},
		{
			"duplicate resource type",
			`{"resource_types": [
				{"name": "stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 1000},
				{"name": "Stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 1000}
			], "items": [{"id": "spear", "attack_value": 1}]}`,
			"duplicate resource type",
		},
		{
			"incremental without amount",
			`{"resource_types": [{"name": "mana", "default_max": 10, "strategy": "incremental", "interval_ms": 1000}], "items": [{"id": "spear", "attack_value": 1}]}`,
			"no positive 'amount'",
		},
		{
			"duplicate item",
			`{"resource_types": [{"name": "stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 1000}],
			"items": [{"id": "spear", "attack_value": 1}, {"id": "spear", "attack_value": 2}]}`,
			"duplicate item id",
		},
		{
			"probability out of range",
			`{"resource_types": [{"name": "stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 1000}],
			"items": [{"id": "spear", "attack_value": 1}],
			"round": {"good_event_probability": 1.5}}`,
			"good_event_probability",
		},
		{
			"unknown reservation policy",
			`{"resource_types": [{"name": "stamina", "default_max": 5, "strategy": "full_reset", "interval_ms": 1000}],
			"items": [{"id": "spear", "attack_value": 1}],
			"round": {"reservation_policy": "defer"}}`,
			"unknown reservation_policy",
		},
		{
			"boost resource not configured",
			`{"resource_types": [{"name": "mana", "default_max": 5, "strategy": "full_reset", "interval_ms": 1000}],
			"items": [{"id": "spear", "attack_value": 1}]}`,
			"boost_resource",
		},
	}
	for _, tc := range cases {
		_, err := LoadConfig(writeConfig(t, tc.content))
		if err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
