package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ericogr/arena-engine/internal/constants"
	"github.com/ericogr/arena-engine/internal/economy"
	"github.com/ericogr/arena-engine/internal/game"
)

type resourceTypeEntry struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	DefaultMax  int    `json:"default_max"`
	Strategy    string `json:"strategy"`
	IntervalMS  int64  `json:"interval_ms"`
	Amount      int    `json:"amount"`
}

type itemEntry struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	AttackValue      int    `json:"attack_value"`
	DefenseValue     int    `json:"defense_value"`
	Consumable       bool   `json:"consumable"`
	GoodOutcomeValue int64  `json:"good_outcome_value"`
	BadOutcomeValue  int64  `json:"bad_outcome_value"`
	StaminaBoost     int    `json:"stamina_boost"`
}

type rawConfig struct {
	ResourceTypes []resourceTypeEntry `json:"resource_types"`
	Items         []itemEntry         `json:"items"`
	Round         *struct {
		GoodEventProbability *float64 `json:"good_event_probability"`
		ReservationPolicy    string   `json:"reservation_policy"`
	} `json:"round"`
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Optional resource type credited by item stamina boosts; defaults to
	// "stamina".
	BoostResource string `json:"boost_resource"`
}

// LoadedConfig contains the validated content and server settings.
type LoadedConfig struct {
	ResourceTypes        []game.ResourceTypeConfig
	Items                []game.ItemDefinition
	GoodEventProbability float64
	ReservationPolicy    economy.ReservationPolicy
	BoostResource        string
	ServerAddress        string
}

// LoadConfig reads and validates the configuration file at path. It requires
// at least one resource type and one item; the config file is the single
// source of truth for content, nothing from it is persisted.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(rc.ResourceTypes) == 0 {
		return nil, fmt.Errorf("config file %s: resource_types is empty", path)
	}
	if len(rc.Items) == 0 {
		return nil, fmt.Errorf("config file %s: items is empty", path)
	}

	types := make([]game.ResourceTypeConfig, 0, len(rc.ResourceTypes))
	typeNames := make(map[string]struct{}, len(rc.ResourceTypes))
	for _, e := range rc.ResourceTypes {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("config file %s: resource type missing 'name'", path)
		}
		if _, exists := typeNames[strings.ToLower(name)]; exists {
			return nil, fmt.Errorf("config file %s: duplicate resource type '%s'", path, name)
		}
		typeNames[strings.ToLower(name)] = struct{}{}

		strategy := game.RegenStrategy(e.Strategy)
		switch strategy {
		case game.RegenFullReset, game.RegenIncremental, game.RegenCharges:
		default:
			return nil, fmt.Errorf("config file %s: resource type '%s' has unknown strategy '%s'", path, name, e.Strategy)
		}
		if e.IntervalMS <= 0 {
			return nil, fmt.Errorf("config file %s: resource type '%s' needs a positive interval_ms", path, name)
		}
		if e.DefaultMax <= 0 {
			return nil, fmt.Errorf("config file %s: resource type '%s' needs a positive default_max", path, name)
		}
		if strategy == game.RegenIncremental && e.Amount <= 0 {
			return nil, fmt.Errorf("config file %s: resource type '%s' is incremental but has no positive 'amount'", path, name)
		}
		types = append(types, game.ResourceTypeConfig{
			Name:        name,
			DisplayName: strings.TrimSpace(e.DisplayName),
			DefaultMax:  e.DefaultMax,
			Strategy:    strategy,
			Interval:    time.Duration(e.IntervalMS) * time.Millisecond,
			Amount:      e.Amount,
		})
	}

	items := make([]game.ItemDefinition, 0, len(rc.Items))
	itemIDs := make(map[string]struct{}, len(rc.Items))
	for _, e := range rc.Items {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("config file %s: item missing 'id'", path)
		}
		if _, exists := itemIDs[id]; exists {
			return nil, fmt.Errorf("config file %s: duplicate item id '%s'", path, id)
		}
		itemIDs[id] = struct{}{}
		if e.AttackValue < 0 || e.DefenseValue < 0 || e.StaminaBoost < 0 {
			return nil, fmt.Errorf("config file %s: item '%s' has negative combat values", path, id)
		}
		items = append(items, game.ItemDefinition{
			ID:               id,
			Name:             strings.TrimSpace(e.Name),
			AttackValue:      e.AttackValue,
			DefenseValue:     e.DefenseValue,
			Consumable:       e.Consumable,
			GoodOutcomeValue: e.GoodOutcomeValue,
			BadOutcomeValue:  e.BadOutcomeValue,
			StaminaBoost:     e.StaminaBoost,
		})
	}

	probability := 0.5
	policy := economy.ReservationTruncate
	if rc.Round != nil {
		if rc.Round.GoodEventProbability != nil {
			probability = *rc.Round.GoodEventProbability
		}
		if rc.Round.ReservationPolicy != "" {
			policy = economy.ReservationPolicy(rc.Round.ReservationPolicy)
			if policy != economy.ReservationFreeze && policy != economy.ReservationTruncate {
				return nil, fmt.Errorf("config file %s: unknown reservation_policy '%s'", path, rc.Round.ReservationPolicy)
			}
		}
	}
	if probability < 0 || probability > 1 {
		return nil, fmt.Errorf("config file %s: good_event_probability must be within [0,1]", path)
	}

	boost := strings.TrimSpace(rc.BoostResource)
	if boost == "" {
		boost = "stamina"
	}
	if _, ok := typeNames[strings.ToLower(boost)]; !ok {
		return nil, fmt.Errorf("config file %s: boost_resource '%s' is not a configured resource type", path, boost)
	}

	addr := constants.DefaultServerAddress
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}

	return &LoadedConfig{
		ResourceTypes:        types,
		Items:                items,
		GoodEventProbability: probability,
		ReservationPolicy:    policy,
		BoostResource:        boost,
		ServerAddress:        addr,
	}, nil
}
