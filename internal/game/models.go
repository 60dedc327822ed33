package game

import (
	"time"

	"gorm.io/gorm"
)

// ChargeSlots is a fixed-capacity list of per-charge cooldown stamps for a
// charge-based pool. A nil entry means the charge has never been used and is
// available; a non-nil entry holds the time the charge was last consumed.
// The slice length equals the granted capacity and never changes outside an
// administrative capacity grant. Stored as a JSON column because the shape
// is irregular and only ever read back whole.
type ChargeSlots []*time.Time

// ResourcePool tracks one regenerating resource for one entity. Regeneration
// is computed lazily from LastRegenAt/Charges and "now"; there is no
// background process. Bonus is ephemeral surplus above Max granted by items:
// it is spent first and excluded from regeneration.
type ResourcePool struct {
	gorm.Model
	EntityID     string      `json:"entity_id" gorm:"index:idx_pool_entity_type,unique"`
	ResourceType string      `json:"resource_type" gorm:"index:idx_pool_entity_type,unique"`
	Current      int         `json:"current"`
	Max          int         `json:"max"`
	Bonus        int         `json:"bonus"`
	LastRegenAt  time.Time   `json:"last_regen_at"`
	LastUseAt    time.Time   `json:"last_use_at"`
	Charges      ChargeSlots `json:"charges" gorm:"serializer:json"`
	// Version implements optimistic concurrency: every write checks and
	// increments it, so a stale record can never overwrite a fresh one.
	Version int `json:"-"`
}

func (ResourcePool) TableName() string { return "resource_pools" }

// PoolView is the read model returned by ledger lookups. Current includes
// any bonus surplus so callers see the spendable total.
type PoolView struct {
	EntityID     string      `json:"entity_id"`
	ResourceType string      `json:"resource_type"`
	Current      int         `json:"current"`
	Max          int         `json:"max"`
	Bonus        int         `json:"bonus"`
	Charges      ChargeSlots `json:"charges,omitempty"`
}

// CurrencyAccount holds one entity's balance. Balance never goes negative:
// every mutation clamps at zero instead of failing.
type CurrencyAccount struct {
	gorm.Model
	EntityID string `json:"entity_id" gorm:"uniqueIndex"`
	Balance  int64  `json:"balance"`
	Version  int    `json:"-"`
}

func (CurrencyAccount) TableName() string { return "currency_accounts" }

// InventoryItem is one entity's holding of one item type. AttacksAvailable
// is the attack-capable subset still unreserved; it is decremented at
// scheduling time, not at settlement. Reserved tracks quantity frozen by
// pending attack reservations when the freeze reservation policy is active.
type InventoryItem struct {
	gorm.Model
	EntityID         string `json:"entity_id" gorm:"index:idx_inventory_entity_item,unique"`
	ItemID           string `json:"item_id" gorm:"index:idx_inventory_entity_item,unique"`
	Quantity         int    `json:"quantity"`
	AttacksAvailable int    `json:"attacks_available"`
	Reserved         int    `json:"reserved"`
	Version          int    `json:"-"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// AttackIntent is a queued, not-yet-applied attack for a round. Intents are
// immutable once queued and are destroyed by settlement (whether applied or
// skipped as malformed).
type AttackIntent struct {
	gorm.Model
	IntentID       string    `json:"intent_id" gorm:"uniqueIndex"`
	RoundID        uint      `json:"round_id" gorm:"index"`
	AttackerID     string    `json:"attacker_id"`
	DefenderID     string    `json:"defender_id"`
	ItemID         string    `json:"item_id"`
	Quantity       int       `json:"quantity"`
	ComputedDamage int64     `json:"computed_damage"`
	QueuedAt       time.Time `json:"queued_at"`
}

func (AttackIntent) TableName() string { return "attack_intents" }

// RoundState is the settlement phase a round is in. Transitions are
// one-directional; a settled round is never reopened.
type RoundState string

const (
	RoundOpen             RoundState = "open"
	RoundIncomeResolution RoundState = "income_resolution"
	RoundCombatResolution RoundState = "combat_resolution"
	RoundSettled          RoundState = "settled"
)

// EventOutcome is the drawn income event for a round.
type EventOutcome string

const (
	EventNone EventOutcome = ""
	EventGood EventOutcome = "good"
	EventBad  EventOutcome = "bad"
)

// Round is one settlement cycle. State records the last sub-phase reached so
// an interrupted settlement is visible to an operator (income applied but
// combat pending); there is no automatic rollback.
type Round struct {
	gorm.Model
	Number               int          `json:"number" gorm:"uniqueIndex"`
	State                RoundState   `json:"state"`
	GoodEventProbability float64      `json:"good_event_probability"`
	EventOutcome         EventOutcome `json:"event_outcome"`
	// Summary holds the formatted result of the last settlement for display.
	Summary string `json:"summary"`
	Version int    `json:"-"`
}

func (Round) TableName() string { return "rounds" }
