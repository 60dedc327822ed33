package economy

import (
	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/storage"
)

// ReservationPolicy decides how attack reservations interact with inventory
// quantity between scheduling and settlement.
type ReservationPolicy string

const (
	// ReservationFreeze moves the scheduled quantity into a dedicated
	// reserved sub-balance at scheduling time, so later removals cannot
	// under-run a pending reservation.
	ReservationFreeze ReservationPolicy = "freeze"
	// ReservationTruncate leaves quantity untouched at scheduling time;
	// settlement revalidates against the live record and silently clamps
	// over-committed attacks.
	ReservationTruncate ReservationPolicy = "truncate"
)

// Store is the per-entity currency and inventory ledger. Balances clamp at
// zero on every mutation instead of failing; attack-reservation counters are
// derived from inventory as attack-capable items are added.
type Store struct {
	repo   storage.Repository
	items  map[string]game.ItemDefinition
	policy ReservationPolicy
}

func New(repo storage.Repository, items []game.ItemDefinition, policy ReservationPolicy) *Store {
	m := make(map[string]game.ItemDefinition, len(items))
	for _, d := range items {
		m[d.ID] = d
	}
	if policy == "" {
		policy = ReservationTruncate
	}
	return &Store{repo: repo, items: m, policy: policy}
}

// Policy returns the active reservation policy.
func (s *Store) Policy() ReservationPolicy { return s.policy }

// ItemDefinition returns the content definition for an item ID.
func (s *Store) ItemDefinition(itemID string) (game.ItemDefinition, error) {
	d, ok := s.items[itemID]
	if !ok {
		return game.ItemDefinition{}, &game.ValidationError{Field: "item_id", Reason: "unknown item " + itemID}
	}
	return d, nil
}

func (s *Store) loadAccount(entityID string) (*game.CurrencyAccount, error) {
	a, err := s.repo.GetCurrencyAccount(entityID)
	if err == nil {
		return a, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}
	return &game.CurrencyAccount{EntityID: entityID}, nil
}

// Balance returns the entity's current balance (zero for entities never seen
// before; accounts are created lazily on first mutation).
func (s *Store) Balance(entityID string) (int64, error) {
	if entityID == "" {
		return 0, &game.ValidationError{Field: "entity_id", Reason: "must not be empty"}
	}
	a, err := s.loadAccount(entityID)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// AdjustBalance applies delta and returns the new balance. Underflow clamps
// to zero; this is enforced by construction, never by raising an error.
func (s *Store) AdjustBalance(entityID string, delta int64) (int64, error) {
	if entityID == "" {
		return 0, &game.ValidationError{Field: "entity_id", Reason: "must not be empty"}
	}
	a, err := s.loadAccount(entityID)
	if err != nil {
		return 0, err
	}
	a.Balance += delta
	if a.Balance < 0 {
		a.Balance = 0
	}
	if err := s.repo.SaveCurrencyAccount(a); err != nil {
		return 0, err
	}
	return a.Balance, nil
}

func (s *Store) loadItem(entityID, itemID string) (*game.InventoryItem, error) {
	it, err := s.repo.GetInventoryItem(entityID, itemID)
	if err == nil {
		return it, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}
	return &game.InventoryItem{EntityID: entityID, ItemID: itemID}, nil
}

// Inventory returns every item the entity holds.
func (s *Store) Inventory(entityID string) ([]game.InventoryItem, error) {
	if entityID == "" {
		return nil, &game.ValidationError{Field: "entity_id", Reason: "must not be empty"}
	}
	return s.repo.GetInventory(entityID)
}

// AddItem increases the holding by qty. For attack-capable items the
// attack-reservation counter grows with the quantity.
func (s *Store) AddItem(entityID, itemID string, qty int) (*game.InventoryItem, error) {
	if qty <= 0 {
		return nil, &game.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	def, err := s.ItemDefinition(itemID)
	if err != nil {
		return nil, err
	}
	it, err := s.loadItem(entityID, itemID)
	if err != nil {
		return nil, err
	}
	it.Quantity += qty
	if def.AttackCapable() {
		it.AttacksAvailable += qty
	}
	if err := s.repo.SaveInventoryItem(it); err != nil {
		return nil, err
	}
	return it, nil
}

// RemoveItem decreases the holding by up to qty and returns the amount
// actually removed. Quantity floors at zero; removing beyond the holding
// clamps rather than failing, and the reported amount lets settlement
// account for partially-covered consumption. Under the freeze policy the
// reserved sub-balance is untouchable.
func (s *Store) RemoveItem(entityID, itemID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, &game.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if _, err := s.ItemDefinition(itemID); err != nil {
		return 0, err
	}
	it, err := s.loadItem(entityID, itemID)
	if err != nil {
		return 0, err
	}
	removable := it.Quantity
	if s.policy == ReservationFreeze {
		removable -= it.Reserved
		if removable < 0 {
			removable = 0
		}
	}
	removed := qty
	if removed > removable {
		removed = removable
	}
	if removed == 0 {
		return 0, nil
	}
	it.Quantity -= removed
	clampAttacks(it)
	if err := s.repo.SaveInventoryItem(it); err != nil {
		return 0, err
	}
	return removed, nil
}

// ReserveAttacks provisionally deducts attack capacity at scheduling time.
// The record is reloaded immediately before the check so the validation runs
// against the freshest persisted state.
func (s *Store) ReserveAttacks(entityID, itemID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, &game.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	def, err := s.ItemDefinition(itemID)
	if err != nil {
		return 0, err
	}
	if !def.AttackCapable() {
		return 0, &game.ValidationError{Field: "item_id", Reason: "item " + itemID + " has no attack value"}
	}
	it, err := s.repo.GetInventoryItem(entityID, itemID)
	if err == storage.ErrNotFound {
		return 0, &game.InsufficientResourceError{EntityID: entityID, Resource: "attacks:" + itemID, Requested: qty, Available: 0}
	}
	if err != nil {
		return 0, err
	}
	if it.AttacksAvailable < qty {
		return 0, &game.InsufficientResourceError{
			EntityID:  entityID,
			Resource:  "attacks:" + itemID,
			Requested: qty,
			Available: it.AttacksAvailable,
		}
	}
	it.AttacksAvailable -= qty
	if s.policy == ReservationFreeze {
		it.Reserved += qty
	}
	if err := s.repo.SaveInventoryItem(it); err != nil {
		return 0, err
	}
	return it.AttacksAvailable, nil
}

// SettleConsumption removes qty of a consumable item at settlement, first
// releasing any frozen reservation backing it. Returns the amount actually
// removed (which can trail qty when the truncate policy let the holding
// shrink in the meantime).
func (s *Store) SettleConsumption(entityID, itemID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, &game.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	it, err := s.loadItem(entityID, itemID)
	if err != nil {
		return 0, err
	}
	if s.policy == ReservationFreeze {
		it.Reserved -= qty
		if it.Reserved < 0 {
			it.Reserved = 0
		}
	}
	removed := qty
	if removed > it.Quantity {
		removed = it.Quantity
	}
	it.Quantity -= removed
	clampAttacks(it)
	if err := s.repo.SaveInventoryItem(it); err != nil {
		return 0, err
	}
	return removed, nil
}

// CancelReservation undoes a scheduling-time reservation that never produced
// a queued intent: the provisional attack capacity (and any frozen quantity)
// goes back to the holding. Settlement never calls this; it is the rollback
// for a failed enqueue.
func (s *Store) CancelReservation(entityID, itemID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	it, err := s.loadItem(entityID, itemID)
	if err != nil {
		return err
	}
	if s.policy == ReservationFreeze {
		it.Reserved -= qty
		if it.Reserved < 0 {
			it.Reserved = 0
		}
	}
	it.AttacksAvailable += qty
	clampAttacks(it)
	return s.repo.SaveInventoryItem(it)
}

// ReleaseReservation returns frozen quantity to the pool when a settled
// intent used a non-consumable item (the item survives the round).
func (s *Store) ReleaseReservation(entityID, itemID string, qty int) error {
	if s.policy != ReservationFreeze || qty <= 0 {
		return nil
	}
	it, err := s.loadItem(entityID, itemID)
	if err != nil {
		return err
	}
	it.Reserved -= qty
	if it.Reserved < 0 {
		it.Reserved = 0
	}
	return s.repo.SaveInventoryItem(it)
}

// clampAttacks keeps the derived reservation counter inside the live
// holding after quantity shrinks.
func clampAttacks(it *game.InventoryItem) {
	limit := it.Quantity - it.Reserved
	if limit < 0 {
		limit = 0
	}
	if it.AttacksAvailable > limit {
		it.AttacksAvailable = limit
	}
}
