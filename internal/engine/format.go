package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ericogr/arena-engine/internal/game"
)

// Attacker-count thresholds for the per-defender verbosity tiers.
const (
	fullDetailMaxAttackers = 5
	compactMaxAttackers    = 10
)

// SegmentLess orders participant segments by display priority: when it
// returns true, a renders before b and survives truncation longer.
type SegmentLess func(a, b *game.ParticipantResult) bool

// DefaultSegmentLess ranks participants by absolute balance swing, then by
// combat volume, then by entity ID for a stable order. Truncation therefore
// drops the least economically significant participants first.
func DefaultSegmentLess(a, b *game.ParticipantResult) bool {
	if a.BalanceSwing() != b.BalanceSwing() {
		return a.BalanceSwing() > b.BalanceSwing()
	}
	if a.CombatVolume() != b.CombatVolume() {
		return a.CombatVolume() > b.CombatVolume()
	}
	return a.EntityID < b.EntityID
}

// Format renders a settled round for display. The output never exceeds
// charBudget characters; lower-priority segments are dropped first.
func Format(result *game.RoundResult, charBudget int) string {
	return FormatWith(result, charBudget, DefaultSegmentLess)
}

// FormatWith is Format with a caller-supplied priority comparator.
func FormatWith(result *game.RoundResult, charBudget int, less SegmentLess) string {
	if charBudget <= 0 {
		return ""
	}
	if less == nil {
		less = DefaultSegmentLess
	}

	header := fmt.Sprintf("Round %d: %s", result.RoundNumber, outcomeLabel(result.EventOutcome))
	if result.SkippedIntents > 0 {
		header += fmt.Sprintf(" (%d malformed intents skipped)", result.SkippedIntents)
	}
	if len(header) > charBudget {
		return truncate(header, charBudget)
	}

	participants := make([]*game.ParticipantResult, len(result.Participants))
	copy(participants, result.Participants)
	sort.SliceStable(participants, func(i, j int) bool { return less(participants[i], participants[j]) })

	var b strings.Builder
	b.WriteString(header)
	dropped := 0
	for _, p := range participants {
		seg := "\n" + renderSegment(p)
		if b.Len()+len(seg) > charBudget {
			dropped++
			continue
		}
		b.WriteString(seg)
	}
	if dropped > 0 {
		footer := fmt.Sprintf("\n(+%d more participants)", dropped)
		if b.Len()+len(footer) <= charBudget {
			b.WriteString(footer)
		}
	}
	return b.String()
}

func outcomeLabel(outcome game.EventOutcome) string {
	switch outcome {
	case game.EventGood:
		return "a good event"
	case game.EventBad:
		return "a bad event"
	default:
		return "no event"
	}
}

// renderSegment produces one participant's block at the verbosity tier
// implied by how many attackers hit them.
func renderSegment(p *game.ParticipantResult) string {
	switch {
	case p.AttackerCount > compactMaxAttackers:
		return fmt.Sprintf("%s: %d attackers, %d total combat damage",
			p.EntityID, p.AttackerCount, p.TotalAttackDamage)
	case p.AttackerCount > fullDetailMaxAttackers:
		return fmt.Sprintf("%s: %d -> %d | income %+d | %d attackers for %d, defense %d, net %d",
			p.EntityID, p.StartingBalance, p.EndingBalance, p.Income,
			p.AttackerCount, p.TotalAttackDamage, p.TotalDefense, p.NetDamage)
	default:
		return renderFullSegment(p)
	}
}

func renderFullSegment(p *game.ParticipantResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d -> %d", p.EntityID, p.StartingBalance, p.EndingBalance)
	if p.Income != 0 {
		fmt.Fprintf(&b, "\n  income %+d", p.Income)
		for _, line := range p.IncomeLines {
			fmt.Fprintf(&b, " [%s x%d %+d]", line.ItemID, line.Quantity, line.Amount)
		}
	}
	for _, line := range p.AttackLines {
		fmt.Fprintf(&b, "\n  hit by %s (%s x%d) for %d", line.AttackerID, line.ItemID, line.Quantity, line.Damage)
	}
	if p.AttackerCount > 0 {
		fmt.Fprintf(&b, "\n  defense %d, net damage %d", p.TotalDefense, p.NetDamage)
	}
	if p.DamageDealt > 0 {
		fmt.Fprintf(&b, "\n  dealt %d damage", p.DamageDealt)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
