package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ericogr/arena-engine/internal/game"
)

// memoryRepository is an in-memory Repository with the same optimistic
// concurrency semantics as the sqlite implementation. It backs tests and
// hosts that embed the engine without a database.
type memoryRepository struct {
	mu sync.Mutex

	pools    map[string]*game.ResourcePool    // key: entity|type
	accounts map[string]*game.CurrencyAccount // key: entity
	items    map[string]*game.InventoryItem   // key: entity|item
	intents  map[uint][]game.AttackIntent     // key: round ID
	rounds   []*game.Round

	nextID uint
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		pools:    make(map[string]*game.ResourcePool),
		accounts: make(map[string]*game.CurrencyAccount),
		items:    make(map[string]*game.InventoryItem),
		intents:  make(map[uint][]game.AttackIntent),
	}
}

func (r *memoryRepository) allocID() uint {
	r.nextID++
	return r.nextID
}

func poolKey(entityID, resourceType string) string { return entityID + "|" + resourceType }
func itemKey(entityID, itemID string) string       { return entityID + "|" + itemID }

func copyPool(p *game.ResourcePool) *game.ResourcePool {
	cp := *p
	if p.Charges != nil {
		cp.Charges = make(game.ChargeSlots, len(p.Charges))
		for i, ts := range p.Charges {
			if ts != nil {
				t := *ts
				cp.Charges[i] = &t
			}
		}
	}
	return &cp
}

func (r *memoryRepository) GetResourcePool(entityID, resourceType string) (*game.ResourcePool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[poolKey(entityID, resourceType)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPool(p), nil
}

func (r *memoryRepository) SaveResourcePool(p *game.ResourcePool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := poolKey(p.EntityID, p.ResourceType)
	stored, ok := r.pools[key]
	if p.ID == 0 {
		if ok {
			return fmt.Errorf("pool %s already exists", key)
		}
		p.ID = r.allocID()
		p.CreatedAt = time.Now()
		p.Version = 1
		r.pools[key] = copyPool(p)
		return nil
	}
	if !ok || stored.Version != p.Version {
		return &game.ConcurrencyConflictError{Key: "pool " + key}
	}
	p.Version++
	p.UpdatedAt = time.Now()
	r.pools[key] = copyPool(p)
	return nil
}

func (r *memoryRepository) GetCurrencyAccount(entityID string) (*game.CurrencyAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[entityID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memoryRepository) SaveCurrencyAccount(a *game.CurrencyAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.accounts[a.EntityID]
	if a.ID == 0 {
		if ok {
			return fmt.Errorf("account %s already exists", a.EntityID)
		}
		a.ID = r.allocID()
		a.Version = 1
		cp := *a
		r.accounts[a.EntityID] = &cp
		return nil
	}
	if !ok || stored.Version != a.Version {
		return &game.ConcurrencyConflictError{Key: "account " + a.EntityID}
	}
	a.Version++
	cp := *a
	r.accounts[a.EntityID] = &cp
	return nil
}

func (r *memoryRepository) GetInventoryItem(entityID, itemID string) (*game.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemKey(entityID, itemID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *memoryRepository) GetInventory(entityID string) ([]game.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.InventoryItem
	for _, it := range r.items {
		if it.EntityID == entityID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (r *memoryRepository) SaveInventoryItem(it *game.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := itemKey(it.EntityID, it.ItemID)
	stored, ok := r.items[key]
	if it.ID == 0 {
		if ok {
			return fmt.Errorf("inventory item %s already exists", key)
		}
		it.ID = r.allocID()
		it.Version = 1
		cp := *it
		r.items[key] = &cp
		return nil
	}
	if !ok || stored.Version != it.Version {
		return &game.ConcurrencyConflictError{Key: "inventory " + key}
	}
	it.Version++
	cp := *it
	r.items[key] = &cp
	return nil
}

func (r *memoryRepository) CreateAttackIntent(in *game.AttackIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = r.allocID()
	r.intents[in.RoundID] = append(r.intents[in.RoundID], *in)
	return nil
}

func (r *memoryRepository) GetAttackIntents(roundID uint) ([]game.AttackIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.intents[roundID]
	out := make([]game.AttackIntent, len(src))
	copy(out, src)
	return out, nil
}

func (r *memoryRepository) DeleteAttackIntents(roundID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.intents, roundID)
	return nil
}

func (r *memoryRepository) CreateRound(rd *game.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd.ID = r.allocID()
	rd.Version = 1
	cp := *rd
	r.rounds = append(r.rounds, &cp)
	return nil
}

func (r *memoryRepository) SaveRound(rd *game.Round) error {
	if rd.ID == 0 {
		return r.CreateRound(rd)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, stored := range r.rounds {
		if stored.ID == rd.ID {
			if stored.Version != rd.Version {
				return &game.ConcurrencyConflictError{Key: fmt.Sprintf("round %d", rd.Number)}
			}
			rd.Version++
			cp := *rd
			r.rounds[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) GetCurrentRound() (*game.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rounds) == 0 {
		return nil, ErrNotFound
	}
	latest := r.rounds[0]
	for _, rd := range r.rounds[1:] {
		if rd.Number > latest.Number {
			latest = rd
		}
	}
	cp := *latest
	return &cp, nil
}

func (r *memoryRepository) ListEntityIDs() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	for id := range r.accounts {
		seen[id] = struct{}{}
	}
	for _, it := range r.items {
		seen[it.EntityID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
