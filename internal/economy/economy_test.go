package economy

import (
	"errors"
	"testing"

	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/storage"
)

func testItems() []game.ItemDefinition {
	return []game.ItemDefinition{
		{ID: "spear", Name: "Spear", AttackValue: 25, Consumable: true},
		{ID: "shield", Name: "Shield", DefenseValue: 50},
		{ID: "ration", Name: "Ration", GoodOutcomeValue: 10, BadOutcomeValue: -5},
	}
}

func newTestStore(t *testing.T, policy ReservationPolicy) *Store {
	t.Helper()
	return New(storage.NewMemoryRepository(), testItems(), policy)
}

func TestAdjustBalanceClampsAtZero(t *testing.T) {
	s := newTestStore(t, ReservationTruncate)

	balance, err := s.AdjustBalance("e1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 30 {
		t.Fatalf("expected balance 30, got %d", balance)
	}

	// Underflow clamps, never errors.
	balance, err = s.AdjustBalance("e1", -100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected clamp to 0, got %d", balance)
	}

	stored, err := s.Balance("e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 0 {
		t.Fatalf("stored balance went negative: %d", stored)
	}
}

func TestAddItemDerivesAttackCapacity(t *testing.T) {
	s := newTestStore(t, ReservationTruncate)

	it, err := s.AddItem("e1", "spear", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Quantity != 3 || it.AttacksAvailable != 3 {
		t.Fatalf("expected quantity and attacks 3, got %+v", it)
	}

	// Defense-only items grant no attack capacity.
	it, err = s.AddItem("e1", "shield", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.AttacksAvailable != 0 {
		t.Fatalf("expected no attack capacity for shield, got %d", it.AttacksAvailable)
	}
}

func TestRemoveItemReportsActualAmount(t *testing.T) {
	s := newTestStore(t, ReservationTruncate)
	if _, err := s.AddItem("e1", "spear", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := s.RemoveItem("e1", "spear", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	it, err := s.repo.GetInventoryItem("e1", "spear")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Quantity != 0 || it.AttacksAvailable != 0 {
		t.Fatalf("expected empty holding, got %+v", it)
	}
}

func TestReserveAttacks(t *testing.T) {
	s := newTestStore(t, ReservationTruncate)
	if _, err := s.AddItem("e1", "spear", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	remaining, err := s.ReserveAttacks("e1", "spear", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 attack left, got %d", remaining)
	}

	_, err = s.ReserveAttacks("e1", "spear", 2)
	var insufficient *game.InsufficientResourceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientResourceError, got %v", err)
	}

	// Defense-only items cannot back attacks.
	_, err = s.ReserveAttacks("e1", "shield", 1)
	var validation *game.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestFreezePolicyProtectsReservation(t *testing.T) {
	s := newTestStore(t, ReservationFreeze)
	if _, err := s.AddItem("e1", "spear", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.ReserveAttacks("e1", "spear", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the unreserved unit can leave the inventory.
	removed, err := s.RemoveItem("e1", "spear", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected reservation to block removal, removed %d", removed)
	}

	// Settlement releases the freeze and depletes the reserved units.
	consumed, err := s.SettleConsumption("e1", "spear", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != 2 {
		t.Fatalf("expected 2 consumed, got %d", consumed)
	}
	it, err := s.repo.GetInventoryItem("e1", "spear")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Quantity != 0 || it.Reserved != 0 {
		t.Fatalf("expected cleared holding, got %+v", it)
	}
}

func TestTruncatePolicyAllowsDivergence(t *testing.T) {
	s := newTestStore(t, ReservationTruncate)
	if _, err := s.AddItem("e1", "spear", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.ReserveAttacks("e1", "spear", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Under truncate the holding may shrink below the reservation.
	removed, err := s.RemoveItem("e1", "spear", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected removal to proceed, removed %d", removed)
	}

	// Settlement then only consumes what is actually left.
	consumed, err := s.SettleConsumption("e1", "spear", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != 1 {
		t.Fatalf("expected consumption clamped to live quantity, got %d", consumed)
	}
}

func TestUnknownItem(t *testing.T) {
	s := newTestStore(t, ReservationTruncate)
	_, err := s.AddItem("e1", "wand", 1)
	var validation *game.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCancelReservationRestoresCapacity(t *testing.T) {
	for _, policy := range []ReservationPolicy{ReservationFreeze, ReservationTruncate} {
		s := newTestStore(t, policy)
		if _, err := s.AddItem("e1", "spear", 3); err != nil {
			t.Fatalf("%s: unexpected error: %v", policy, err)
		}
		if _, err := s.ReserveAttacks("e1", "spear", 2); err != nil {
			t.Fatalf("%s: unexpected error: %v", policy, err)
		}
		if err := s.CancelReservation("e1", "spear", 2); err != nil {
			t.Fatalf("%s: unexpected error: %v", policy, err)
		}

		it, err := s.repo.GetInventoryItem("e1", "spear")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", policy, err)
		}
		if it.AttacksAvailable != 3 {
			t.Fatalf("%s: expected full capacity restored, got %d", policy, it.AttacksAvailable)
		}
		if it.Reserved != 0 {
			t.Fatalf("%s: expected no frozen quantity, got %d", policy, it.Reserved)
		}
	}
}
