package engine

import (
	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/logging"

	"github.com/google/uuid"
)

// MaxIntentQuantity bounds a single scheduled attack. Anything above it is
// treated as malformed at settlement; scheduling rejects it outright.
const MaxIntentQuantity = 1000

// ScheduleAttack validates and queues an attack intent for the open round.
// Attack capacity is reserved at scheduling time, so an accepted intent is
// backed by a provisional deduction on the attacker's inventory. The intent
// is immutable once queued; only settlement removes it.
func (c *Controller) ScheduleAttack(attackerID, defenderID, itemID string, quantity int) (*game.AttackIntent, error) {
	if attackerID == "" {
		return nil, &game.ValidationError{Field: "attacker_id", Reason: "must not be empty"}
	}
	if defenderID == "" {
		return nil, &game.ValidationError{Field: "defender_id", Reason: "must not be empty"}
	}
	if attackerID == defenderID {
		return nil, &game.ValidationError{Field: "defender_id", Reason: "cannot target self"}
	}
	if quantity <= 0 {
		return nil, &game.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if quantity > MaxIntentQuantity {
		return nil, &game.ValidationError{Field: "quantity", Reason: "exceeds per-intent limit"}
	}

	def, ok := c.items[itemID]
	if !ok {
		return nil, &game.ValidationError{Field: "item_id", Reason: "unknown item " + itemID}
	}
	if !def.AttackCapable() {
		return nil, &game.ValidationError{Field: "item_id", Reason: "item " + itemID + " has no attack value"}
	}

	round, err := c.openRound()
	if err != nil {
		return nil, err
	}

	// Reservation happens against a freshly reloaded inventory record; an
	// insufficient or conflicting reservation surfaces here, not at
	// settlement.
	if _, err := c.economy.ReserveAttacks(attackerID, itemID, quantity); err != nil {
		return nil, err
	}

	intent := &game.AttackIntent{
		IntentID:       uuid.NewString(),
		RoundID:        round.ID,
		AttackerID:     attackerID,
		DefenderID:     defenderID,
		ItemID:         itemID,
		Quantity:       quantity,
		ComputedDamage: int64(def.AttackValue) * int64(quantity),
		QueuedAt:       c.now(),
	}
	if err := c.repo.CreateAttackIntent(intent); err != nil {
		// Give the provisional capacity back so a queue fault does not leak
		// the reservation. Best effort only; a second fault here is logged
		// and left to the operator.
		if cancelErr := c.economy.CancelReservation(attackerID, itemID, quantity); cancelErr != nil {
			logging.Error("failed to cancel reservation after queue fault", cancelErr, logging.Fields{
				"attacker_id": attackerID,
				"item_id":     itemID,
			})
		}
		return nil, err
	}
	logging.Info("attack scheduled", logging.Fields{
		"attacker_id": attackerID,
		"defender_id": defenderID,
		"item_id":     itemID,
		"quantity":    quantity,
		"round":       round.Number,
	})
	return intent, nil
}
