package game

import "time"

// RegenStrategy selects how a resource pool refills over time.
// Using a dedicated type instead of plain string makes code safer and
// self-documenting.
type RegenStrategy string

const (
	// RegenFullReset restores the pool to max once the full interval has
	// elapsed since the last regeneration anchor.
	RegenFullReset RegenStrategy = "full_reset"
	// RegenIncremental adds a fixed amount per elapsed interval, capped at max.
	RegenIncremental RegenStrategy = "incremental"
	// RegenCharges tracks each unit of capacity on its own cooldown.
	RegenCharges RegenStrategy = "charges"
)

// ResourceTypeConfig describes one regenerating resource type (e.g. stamina).
// These records are supplied by the content configuration and are read-only
// to the engine; they are never persisted in the database.
type ResourceTypeConfig struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	DefaultMax  int           `json:"default_max"`
	Strategy    RegenStrategy `json:"strategy"`
	// Interval is the regeneration period. For full_reset it is the time to
	// a full refill, for incremental the time per Amount refilled, for
	// charges the per-charge cooldown.
	Interval time.Duration `json:"-"`
	Amount   int           `json:"amount"`
}

// ItemDefinition describes one item type. Like resource types, item
// definitions come from the content configuration and are read-only here.
type ItemDefinition struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	AttackValue      int    `json:"attack_value"`
	DefenseValue     int    `json:"defense_value"`
	Consumable       bool   `json:"consumable"`
	GoodOutcomeValue int64  `json:"good_outcome_value"`
	BadOutcomeValue  int64  `json:"bad_outcome_value"`
	StaminaBoost     int    `json:"stamina_boost"`
}

// AttackCapable reports whether the item can be used to schedule attacks.
func (d ItemDefinition) AttackCapable() bool { return d.AttackValue > 0 }

// DefenseCapable reports whether the item contributes to a defender's total
// defense during combat resolution.
func (d ItemDefinition) DefenseCapable() bool { return d.DefenseValue > 0 }

// OutcomeValue returns the per-unit income for the item under the given
// round event outcome.
func (d ItemDefinition) OutcomeValue(outcome EventOutcome) int64 {
	if outcome == EventGood {
		return d.GoodOutcomeValue
	}
	return d.BadOutcomeValue
}
