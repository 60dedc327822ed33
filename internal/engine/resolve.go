package engine

import (
	"sort"

	"github.com/ericogr/arena-engine/internal/constants"
	"github.com/ericogr/arena-engine/internal/economy"
	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/logging"
	"github.com/ericogr/arena-engine/internal/storage"
)

// appliedIntent is a validated intent with its settlement-time effective
// quantity (which can trail the scheduled quantity under the truncate
// reservation policy).
type appliedIntent struct {
	intent   game.AttackIntent
	def      game.ItemDefinition
	quantity int
	damage   int64
}

// resolveCombat settles all queued intents for the round: malformed records
// are logged and skipped, damage is aggregated per defender against that
// defender's standing defense, and consumable items are depleted. Defenders
// are processed independently so a fault on one record never blocks the
// rest. The queue is cleared whether or not some records were skipped.
func (c *Controller) resolveCombat(round *game.Round, result *game.RoundResult) error {
	intents, err := c.repo.GetAttackIntents(round.ID)
	if err != nil {
		return err
	}

	// Remaining live quantity per attacker and item under the truncate
	// policy, so several intents against the same holding never double-count
	// the surviving units.
	var live map[string]int
	if c.economy.Policy() == economy.ReservationTruncate {
		live = make(map[string]int)
	}

	applied := make([]appliedIntent, 0, len(intents))
	for _, in := range intents {
		if reason := c.checkIntent(&in); reason != "" {
			merr := &game.MalformedRecordError{IntentID: in.IntentID, Reason: reason}
			logging.Warn("skipping malformed attack intent", logging.Fields{
				constants.LogFieldIntentID: in.IntentID,
				constants.LogFieldRound:    round.Number,
				constants.LogFieldReason:   merr.Reason,
			})
			result.SkippedIntents++
			continue
		}
		ai := appliedIntent{intent: in, def: c.items[in.ItemID], quantity: in.Quantity, damage: in.ComputedDamage}
		if live != nil {
			ai.quantity, ai.damage = c.truncateToLiveQuantity(&in, ai.def, live)
		}
		applied = append(applied, ai)
	}

	byDefender := make(map[string][]appliedIntent)
	for _, ai := range applied {
		byDefender[ai.intent.DefenderID] = append(byDefender[ai.intent.DefenderID], ai)
	}
	defenders := make([]string, 0, len(byDefender))
	for id := range byDefender {
		defenders = append(defenders, id)
	}
	sort.Strings(defenders)

	for _, defenderID := range defenders {
		c.resolveDefender(defenderID, byDefender[defenderID], result)
	}

	// Deplete consumables and release frozen reservations. Per-intent, so
	// one failing record leaves the others settled.
	for _, ai := range applied {
		if ai.quantity == 0 {
			continue
		}
		var err error
		if ai.def.Consumable {
			_, err = c.economy.SettleConsumption(ai.intent.AttackerID, ai.intent.ItemID, ai.intent.Quantity)
		} else {
			err = c.economy.ReleaseReservation(ai.intent.AttackerID, ai.intent.ItemID, ai.intent.Quantity)
		}
		if err != nil {
			logging.Error("failed to settle item usage", err, logging.Fields{
				constants.LogFieldAttacker: ai.intent.AttackerID,
				constants.LogFieldItemID:   ai.intent.ItemID,
			})
		}
	}

	return c.repo.DeleteAttackIntents(round.ID)
}

// resolveDefender applies one defender's aggregated combat outcome. Errors
// touching that defender's records are logged and do not abort other
// defenders.
func (c *Controller) resolveDefender(defenderID string, attacks []appliedIntent, result *game.RoundResult) {
	var totalAttack int64
	attackers := make(map[string]struct{})
	part := result.Participant(defenderID)
	for _, ai := range attacks {
		if ai.quantity == 0 {
			continue
		}
		totalAttack += ai.damage
		attackers[ai.intent.AttackerID] = struct{}{}
		part.AttackLines = append(part.AttackLines, game.AttackLine{
			AttackerID: ai.intent.AttackerID,
			ItemID:     ai.intent.ItemID,
			Quantity:   ai.quantity,
			Damage:     ai.damage,
		})
		result.Participant(ai.intent.AttackerID).DamageDealt += ai.damage
	}

	defense, err := c.defenseFor(defenderID)
	if err != nil {
		logging.Error("failed to load defender inventory", err, logging.Fields{
			constants.LogFieldDefender: defenderID,
		})
		return
	}

	net := totalAttack - defense
	if net < 0 {
		net = 0
	}
	part.AttackerCount = len(attackers)
	part.TotalAttackDamage = totalAttack
	part.TotalDefense = defense
	part.NetDamage = net

	if net > 0 {
		if _, err := c.economy.AdjustBalance(defenderID, -net); err != nil {
			logging.Error("failed to apply combat damage", err, logging.Fields{
				constants.LogFieldDefender: defenderID,
			})
		}
	}
}

// defenseFor sums defenseValue * quantity over the defender's
// non-consumable, defense-capable holdings.
func (c *Controller) defenseFor(defenderID string) (int64, error) {
	inventory, err := c.economy.Inventory(defenderID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, it := range inventory {
		def, ok := c.items[it.ItemID]
		if !ok || def.Consumable || !def.DefenseCapable() {
			continue
		}
		total += int64(def.DefenseValue) * int64(it.Quantity)
	}
	return total, nil
}

// checkIntent runs the structural checks on a queued record. It returns a
// non-empty reason when the record must be skipped.
func (c *Controller) checkIntent(in *game.AttackIntent) string {
	switch {
	case in.IntentID == "":
		return "missing intent id"
	case in.AttackerID == "" || in.DefenderID == "":
		return "missing participant"
	case in.AttackerID == in.DefenderID:
		return "self-targeting"
	case in.ItemID == "":
		return "missing item"
	case in.Quantity <= 0 || in.Quantity > MaxIntentQuantity:
		return "quantity out of bounds"
	case in.ComputedDamage < 0:
		return "negative damage"
	}
	if _, ok := c.items[in.ItemID]; !ok {
		return "unknown item " + in.ItemID
	}
	return ""
}

// truncateToLiveQuantity clamps the intent to the attacker's live holding at
// settlement time (the truncate reservation policy: later trades can shrink
// what was scheduled). live carries the not-yet-committed remainder per
// attacker|item key across intents; each clamp consumes from it.
func (c *Controller) truncateToLiveQuantity(in *game.AttackIntent, def game.ItemDefinition, live map[string]int) (int, int64) {
	key := in.AttackerID + "|" + in.ItemID
	remaining, loaded := live[key]
	if !loaded {
		it, err := c.repo.GetInventoryItem(in.AttackerID, in.ItemID)
		switch {
		case err == storage.ErrNotFound:
			remaining = 0
		case err != nil:
			logging.Error("failed to revalidate intent quantity", err, logging.Fields{
				constants.LogFieldAttacker: in.AttackerID,
				constants.LogFieldItemID:   in.ItemID,
			})
			remaining = 0
		default:
			remaining = it.Quantity
		}
	}
	qty := in.Quantity
	if qty > remaining {
		qty = remaining
	}
	live[key] = remaining - qty
	return qty, int64(def.AttackValue) * int64(qty)
}
