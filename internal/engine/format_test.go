package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ericogr/arena-engine/internal/game"
)

// resultUnderAttack builds a settled result where one defender was hit by n
// distinct attackers for 10 damage each.
func resultUnderAttack(n int) *game.RoundResult {
	result := &game.RoundResult{RoundNumber: 7, EventOutcome: game.EventGood}
	part := result.Participant("defender")
	part.StartingBalance = 500
	part.AttackerCount = n
	for i := 0; i < n; i++ {
		part.AttackLines = append(part.AttackLines, game.AttackLine{
			AttackerID: fmt.Sprintf("attacker%02d", i),
			ItemID:     "spear",
			Quantity:   1,
			Damage:     10,
		})
		part.TotalAttackDamage += 10
	}
	part.NetDamage = part.TotalAttackDamage
	part.EndingBalance = part.StartingBalance - part.NetDamage
	return result
}

func TestFormatFullDetailTier(t *testing.T) {
	out := Format(resultUnderAttack(3), 2000)
	if !strings.HasPrefix(out, "Round 7: a good event") {
		t.Fatalf("unexpected header: %q", out)
	}
	// Five or fewer attackers get a line per hit.
	for i := 0; i < 3; i++ {
		line := fmt.Sprintf("hit by attacker%02d (spear x1) for 10", i)
		if !strings.Contains(out, line) {
			t.Fatalf("expected %q in output:\n%s", line, out)
		}
	}
	if !strings.Contains(out, "defense 0, net damage 30") {
		t.Fatalf("expected defense summary, got:\n%s", out)
	}
}

func TestFormatCompactTier(t *testing.T) {
	out := Format(resultUnderAttack(8), 2000)
	if strings.Contains(out, "hit by") {
		t.Fatalf("compact tier must not list individual hits:\n%s", out)
	}
	if !strings.Contains(out, "8 attackers for 80") {
		t.Fatalf("expected aggregate attacker line, got:\n%s", out)
	}
	if !strings.Contains(out, "500 -> 420") {
		t.Fatalf("expected balance movement, got:\n%s", out)
	}
}

func TestFormatSummaryTier(t *testing.T) {
	out := Format(resultUnderAttack(11), 2000)
	if !strings.Contains(out, "defender: 11 attackers, 110 total combat damage") {
		t.Fatalf("expected one-line summary, got:\n%s", out)
	}
	if strings.Contains(out, "->") {
		t.Fatalf("summary tier must omit the balance breakdown:\n%s", out)
	}
}

func TestFormatNeverExceedsBudget(t *testing.T) {
	result := &game.RoundResult{RoundNumber: 3, EventOutcome: game.EventBad}
	for i := 0; i < 40; i++ {
		p := result.Participant(fmt.Sprintf("entity%02d", i))
		p.StartingBalance = int64(100 * i)
		p.EndingBalance = int64(90 * i)
	}
	for _, budget := range []int{0, 5, 40, 120, 500, 2000} {
		out := Format(result, budget)
		if len(out) > budget {
			t.Fatalf("budget %d exceeded: rendered %d chars", budget, len(out))
		}
	}
}

func TestFormatDropsLeastSignificantFirst(t *testing.T) {
	result := &game.RoundResult{RoundNumber: 5, EventOutcome: game.EventGood}
	big := result.Participant("whale")
	big.StartingBalance = 1000
	big.EndingBalance = 400
	small := result.Participant("minnow")
	small.StartingBalance = 100
	small.EndingBalance = 99

	header := "Round 5: a good event"
	budget := len(header) + 1 + len(renderSegment(big)) + 2
	out := Format(result, budget)
	if !strings.Contains(out, "whale") {
		t.Fatalf("expected the largest swing to survive truncation:\n%s", out)
	}
	if strings.Contains(out, "minnow") {
		t.Fatalf("expected the smallest swing to be dropped:\n%s", out)
	}
}

func TestFormatTruncationFooter(t *testing.T) {
	result := &game.RoundResult{RoundNumber: 2, EventOutcome: game.EventBad}
	for i := 0; i < 6; i++ {
		p := result.Participant(fmt.Sprintf("entity%d", i))
		p.StartingBalance = int64(1000 - i)
		p.EndingBalance = 0
		p.AttackerCount = 1
		p.TotalAttackDamage = 10
		p.NetDamage = 10
		p.AttackLines = []game.AttackLine{{AttackerID: "foe", ItemID: "spear", Quantity: 1, Damage: 10}}
	}
	// Room for the header, the highest-swing segment and the footer, but not
	// for a second segment.
	header := "Round 2: a bad event"
	footer := "\n(+5 more participants)"
	budget := len(header) + 1 + len(renderSegment(result.Participant("entity0"))) + len(footer)
	out := Format(result, budget)
	if !strings.HasSuffix(out, footer) {
		t.Fatalf("expected truncation footer, got:\n%s", out)
	}
	if !strings.Contains(out, "entity0") || strings.Contains(out, "entity1") {
		t.Fatalf("expected only the top segment to survive:\n%s", out)
	}
}

func TestFormatWithCustomComparator(t *testing.T) {
	result := &game.RoundResult{RoundNumber: 9}
	result.Participant("aaa").EndingBalance = 1
	result.Participant("zzz").EndingBalance = 500

	byID := func(a, b *game.ParticipantResult) bool { return a.EntityID < b.EntityID }
	out := FormatWith(result, 2000, byID)
	if strings.Index(out, "aaa") > strings.Index(out, "zzz") {
		t.Fatalf("expected comparator order to hold:\n%s", out)
	}
}
