package ledger

import (
	"time"

	"github.com/ericogr/arena-engine/internal/game"
)

// regenerated computes the pool's current value at "now" as a pure function
// of the stored record and the type configuration. It never mutates the
// record, which keeps reads cheap and idempotent.
func regenerated(p *game.ResourcePool, cfg game.ResourceTypeConfig, now time.Time) int {
	switch cfg.Strategy {
	case game.RegenFullReset:
		if cfg.Interval > 0 && now.Sub(p.LastRegenAt) >= cfg.Interval {
			return p.Max
		}
		return p.Current
	case game.RegenIncremental:
		if cfg.Interval <= 0 || cfg.Amount <= 0 {
			return p.Current
		}
		steps := int(now.Sub(p.LastRegenAt) / cfg.Interval)
		if steps <= 0 {
			return p.Current
		}
		current := p.Current + steps*cfg.Amount
		if current > p.Max {
			current = p.Max
		}
		return current
	case game.RegenCharges:
		return availableCharges(p.Charges, cfg.Interval, now)
	default:
		return p.Current
	}
}

// availableCharges counts charges that are off cooldown. Each charge
// regenerates independently: a nil stamp has never been used, a non-nil
// stamp is available again once a full interval has elapsed since it.
func availableCharges(slots game.ChargeSlots, interval time.Duration, now time.Time) int {
	n := 0
	for _, ts := range slots {
		if chargeAvailable(ts, interval, now) {
			n++
		}
	}
	return n
}

func chargeAvailable(ts *time.Time, interval time.Duration, now time.Time) bool {
	return ts == nil || now.Sub(*ts) >= interval
}

// materialize folds any pending regeneration into the record prior to a
// write. For full_reset the anchor moves to now when the reset fires; for
// incremental it advances by the whole consumed intervals so the remainder
// keeps accruing. Charge pools need no materialization (the slots are the
// state).
func materialize(p *game.ResourcePool, cfg game.ResourceTypeConfig, now time.Time) {
	switch cfg.Strategy {
	case game.RegenFullReset:
		if cfg.Interval > 0 && now.Sub(p.LastRegenAt) >= cfg.Interval {
			p.Current = p.Max
			p.LastRegenAt = now
		}
	case game.RegenIncremental:
		if cfg.Interval <= 0 || cfg.Amount <= 0 {
			return
		}
		steps := int(now.Sub(p.LastRegenAt) / cfg.Interval)
		if steps <= 0 {
			return
		}
		p.Current += steps * cfg.Amount
		if p.Current > p.Max {
			p.Current = p.Max
		}
		p.LastRegenAt = p.LastRegenAt.Add(time.Duration(steps) * cfg.Interval)
	}
}

// consumeCharges stamps up to n of the oldest-available charges with now and
// returns how many were stamped. Never-used (nil) slots are considered
// oldest of all.
func consumeCharges(slots game.ChargeSlots, cfg game.ResourceTypeConfig, now time.Time, n int) int {
	stamped := 0
	for stamped < n {
		idx := -1
		for i, ts := range slots {
			if !chargeAvailable(ts, cfg.Interval, now) {
				continue
			}
			if idx == -1 {
				idx = i
				continue
			}
			// Prefer nil (never used), then the earliest stamp.
			cur := slots[idx]
			if cur == nil {
				continue
			}
			if ts == nil || ts.Before(*cur) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		t := now
		slots[idx] = &t
		stamped++
	}
	return stamped
}
