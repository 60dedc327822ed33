package engine

import (
	"fmt"

	"github.com/ericogr/arena-engine/internal/constants"
	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/logging"
	"github.com/ericogr/arena-engine/internal/storage"
)

// StartRound opens a new round. When the previous round was left in a
// non-settled state it is forced to Settled first; this is a safety net for
// an interrupted settlement, not a recoverable path — whatever sub-phase it
// reached stays applied and an operator must reconcile.
func (c *Controller) StartRound() (*game.Round, error) {
	number := 1
	prev, err := c.repo.GetCurrentRound()
	if err != nil && err != storage.ErrNotFound {
		return nil, err
	}
	if prev != nil {
		number = prev.Number + 1
		if prev.State != game.RoundSettled {
			logging.Warn("forcing unsettled round to settled before opening a new one", logging.Fields{
				constants.LogFieldRound: prev.Number,
				"state":                 string(prev.State),
			})
			prev.State = game.RoundSettled
			if err := c.repo.SaveRound(prev); err != nil {
				return nil, err
			}
		}
	}

	round := &game.Round{
		Number:               number,
		State:                game.RoundOpen,
		GoodEventProbability: c.goodEventProbability,
	}
	if err := c.repo.CreateRound(round); err != nil {
		return nil, err
	}
	logging.Info("round opened", logging.Fields{constants.LogFieldRound: round.Number})
	return round, nil
}

// SettleRound drives the current round through income resolution, combat
// resolution and into the settled state, returning the aggregate result.
// Concurrent calls for the same round collapse into a single settlement.
// The phase transitions are persisted as they happen: if the process dies
// between phases, the stored state names the last completed sub-phase.
func (c *Controller) SettleRound() (*game.RoundResult, error) {
	round, err := c.openRound()
	if err != nil {
		return nil, err
	}
	v, err, _ := c.settle.Do(fmt.Sprintf("round-%d", round.Number), func() (interface{}, error) {
		return c.settleRound(round)
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.RoundResult), nil
}

func (c *Controller) settleRound(round *game.Round) (*game.RoundResult, error) {
	result := &game.RoundResult{RoundNumber: round.Number}

	// Starting balances for everyone the store knows about, so the result
	// reports movement even for entities that only lost.
	entityIDs, err := c.repo.ListEntityIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range entityIDs {
		balance, err := c.economy.Balance(id)
		if err != nil {
			return nil, err
		}
		p := result.Participant(id)
		p.StartingBalance = balance
	}

	// Phase 1: income resolution.
	round.State = game.RoundIncomeResolution
	round.EventOutcome = c.drawEventOutcome(round.GoodEventProbability)
	if err := c.repo.SaveRound(round); err != nil {
		return nil, err
	}
	result.EventOutcome = round.EventOutcome
	logging.Info("income resolution", logging.Fields{
		constants.LogFieldRound:   round.Number,
		constants.LogFieldOutcome: string(round.EventOutcome),
	})
	for _, id := range entityIDs {
		if err := c.applyIncome(id, round.EventOutcome, result); err != nil {
			logging.Error("failed to apply income", err, logging.Fields{
				constants.LogFieldEntityID: id,
				constants.LogFieldRound:    round.Number,
			})
		}
	}

	// Phase 2: combat resolution.
	round.State = game.RoundCombatResolution
	if err := c.repo.SaveRound(round); err != nil {
		return nil, err
	}
	if err := c.resolveCombat(round, result); err != nil {
		return nil, err
	}

	// Phase 3: settled.
	for _, p := range result.Participants {
		balance, err := c.economy.Balance(p.EntityID)
		if err != nil {
			return nil, err
		}
		p.EndingBalance = balance
	}
	round.State = game.RoundSettled
	round.Summary = Format(result, constants.DefaultSummaryBudget)
	if err := c.repo.SaveRound(round); err != nil {
		return nil, err
	}
	logging.Info("round settled", logging.Fields{
		constants.LogFieldRound: round.Number,
		"participants":          len(result.Participants),
		"skipped_intents":       result.SkippedIntents,
	})

	if c.onSettle != nil {
		c.onSettle(result)
	}
	return result, nil
}

// drawEventOutcome draws the weighted random income event for the round.
func (c *Controller) drawEventOutcome(goodProbability float64) game.EventOutcome {
	if c.rng.Float64() < goodProbability {
		return game.EventGood
	}
	return game.EventBad
}

// applyIncome credits (or debits) one entity's income for the drawn outcome
// across its whole inventory.
func (c *Controller) applyIncome(entityID string, outcome game.EventOutcome, result *game.RoundResult) error {
	inventory, err := c.economy.Inventory(entityID)
	if err != nil {
		return err
	}
	part := result.Participant(entityID)
	var total int64
	for _, it := range inventory {
		def, ok := c.items[it.ItemID]
		if !ok || it.Quantity == 0 {
			continue
		}
		amount := def.OutcomeValue(outcome) * int64(it.Quantity)
		if amount == 0 {
			continue
		}
		part.IncomeLines = append(part.IncomeLines, game.IncomeLine{
			ItemID:   it.ItemID,
			Quantity: it.Quantity,
			Amount:   amount,
		})
		total += amount
	}
	if total == 0 {
		return nil
	}
	part.Income = total
	_, err = c.economy.AdjustBalance(entityID, total)
	return err
}
