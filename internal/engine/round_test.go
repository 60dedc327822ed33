package engine

import (
	"errors"
	"testing"

	"github.com/ericogr/arena-engine/internal/economy"
	"github.com/ericogr/arena-engine/internal/game"
)

func TestRoundLifecycle(t *testing.T) {
	ctrl, eco := newTestEngine(t, economy.ReservationTruncate, 1)
	mustAdd(t, eco, "farmer", "ration", 3)

	round, err := ctrl.StartRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if round.Number != 1 || round.State != game.RoundOpen {
		t.Fatalf("unexpected opening round: %+v", round)
	}

	if _, err := ctrl.SettleRound(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	current, err := ctrl.CurrentRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.State != game.RoundSettled {
		t.Fatalf("expected settled state, got %s", current.State)
	}
	if current.EventOutcome != game.EventGood {
		t.Fatalf("expected recorded outcome, got %q", current.EventOutcome)
	}
	if current.Summary == "" {
		t.Fatal("expected persisted round summary")
	}

	// A settled round no longer accepts attacks or another settlement.
	var validation *game.ValidationError
	if _, err := ctrl.ScheduleAttack("farmer", "rival", "spear", 1); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := ctrl.SettleRound(); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	next, err := ctrl.StartRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Number != 2 {
		t.Fatalf("expected round 2, got %d", next.Number)
	}
}

func TestGoodEventIncome(t *testing.T) {
	ctrl, eco := newTestEngine(t, economy.ReservationTruncate, 1)
	mustAdd(t, eco, "farmer", "ration", 3)
	if _, err := eco.AdjustBalance("farmer", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ctrl.StartRound(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := ctrl.SettleRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.EventOutcome != game.EventGood {
		t.Fatalf("expected good outcome, got %q", result.EventOutcome)
	}
	part := result.Participant("farmer")
	if part.Income != 30 {
		t.Fatalf("expected income 10 * 3, got %d", part.Income)
	}
	if part.StartingBalance != 50 || part.EndingBalance != 80 {
		t.Fatalf("unexpected balances: start %d end %d", part.StartingBalance, part.EndingBalance)
	}
	mustBalance(t, eco, "farmer", 80)
}

func TestBadEventIncomeClampsAtZero(t *testing.T) {
	ctrl, eco := newTestEngine(t, economy.ReservationTruncate, 0)
	mustAdd(t, eco, "farmer", "ration", 3)
	if _, err := eco.AdjustBalance("farmer", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ctrl.StartRound(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := ctrl.SettleRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.EventOutcome != game.EventBad {
		t.Fatalf("expected bad outcome, got %q", result.EventOutcome)
	}
	part := result.Participant("farmer")
	if part.Income != -15 {
		t.Fatalf("expected income -5 * 3, got %d", part.Income)
	}
	// The debit of 15 against a balance of 10 floors at zero.
	mustBalance(t, eco, "farmer", 0)
	if part.EndingBalance != 0 {
		t.Fatalf("expected ending balance 0, got %d", part.EndingBalance)
	}
}

func TestStartRoundForcesUnsettledPrevious(t *testing.T) {
	ctrl, _ := newTestEngine(t, economy.ReservationTruncate, 0)
	first, err := ctrl.StartRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Simulate a settlement interrupted mid-phase.
	first.State = game.RoundIncomeResolution
	if err := ctrl.repo.SaveRound(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next, err := ctrl.StartRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Number != 2 {
		t.Fatalf("expected round 2, got %d", next.Number)
	}
	current, err := ctrl.CurrentRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Number != 2 || current.State != game.RoundOpen {
		t.Fatalf("unexpected current round: %+v", current)
	}
}

func TestSettleHookReceivesResult(t *testing.T) {
	var seen *game.RoundResult
	ctrl, eco := newTestEngine(t, economy.ReservationTruncate, 1)
	ctrl.onSettle = func(r *game.RoundResult) { seen = r }
	mustAdd(t, eco, "farmer", "ration", 1)

	if _, err := ctrl.StartRound(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := ctrl.SettleRound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != result {
		t.Fatal("expected the settle hook to receive the round result")
	}
}
