package ledger

import (
	"time"

	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/storage"
)

// Ledger tracks regenerating per-entity resource pools. It holds no entity
// state between calls: every operation reloads the freshest record, applies
// the delta and writes it back under the repository's version check.
type Ledger struct {
	repo  storage.Repository
	types map[string]game.ResourceTypeConfig
	now   func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock substitutes the time source, used by tests to drive regeneration
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(repo storage.Repository, types []game.ResourceTypeConfig, opts ...Option) *Ledger {
	m := make(map[string]game.ResourceTypeConfig, len(types))
	for _, t := range types {
		m[t.Name] = t
	}
	l := &Ledger{repo: repo, types: m, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Ledger) config(resourceType string) (game.ResourceTypeConfig, error) {
	cfg, ok := l.types[resourceType]
	if !ok {
		return game.ResourceTypeConfig{}, &game.ValidationError{Field: "resource_type", Reason: "unknown resource type " + resourceType}
	}
	return cfg, nil
}

// load returns the stored pool or, when none exists yet, a fresh unsaved
// record in the type's default state (pools are created lazily on first
// access; the record is only persisted by a mutation).
func (l *Ledger) load(entityID string, cfg game.ResourceTypeConfig, now time.Time) (*game.ResourcePool, error) {
	p, err := l.repo.GetResourcePool(entityID, cfg.Name)
	if err == nil {
		return p, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}
	p = &game.ResourcePool{
		EntityID:     entityID,
		ResourceType: cfg.Name,
		Current:      cfg.DefaultMax,
		Max:          cfg.DefaultMax,
		LastRegenAt:  now,
	}
	if cfg.Strategy == game.RegenCharges {
		p.Charges = make(game.ChargeSlots, cfg.DefaultMax)
	}
	return p, nil
}

func (l *Ledger) view(p *game.ResourcePool, cfg game.ResourceTypeConfig, now time.Time) *game.PoolView {
	return &game.PoolView{
		EntityID:     p.EntityID,
		ResourceType: p.ResourceType,
		Current:      regenerated(p, cfg, now) + p.Bonus,
		Max:          p.Max,
		Bonus:        p.Bonus,
		Charges:      p.Charges,
	}
}

// Get returns the pool's state at "now". It never writes: regeneration is
// computed on the fly, so two consecutive calls with no intervening mutation
// return identical values.
func (l *Ledger) Get(entityID, resourceType string) (*game.PoolView, error) {
	if entityID == "" {
		return nil, &game.ValidationError{Field: "entity_id", Reason: "must not be empty"}
	}
	cfg, err := l.config(resourceType)
	if err != nil {
		return nil, err
	}
	now := l.now()
	p, err := l.load(entityID, cfg, now)
	if err != nil {
		return nil, err
	}
	return l.view(p, cfg, now), nil
}

// Consume spends amount from the pool. Bonus surplus is spent first; for
// charge pools the remainder stamps the oldest available charges. When the
// pool cannot cover the amount and allowOverMax is false the call fails with
// InsufficientResourceError and nothing is written. The stored value never
// drops below zero.
func (l *Ledger) Consume(entityID, resourceType string, amount int, allowOverMax bool) (*game.PoolView, error) {
	if entityID == "" {
		return nil, &game.ValidationError{Field: "entity_id", Reason: "must not be empty"}
	}
	if amount <= 0 {
		return nil, &game.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	cfg, err := l.config(resourceType)
	if err != nil {
		return nil, err
	}
	now := l.now()
	p, err := l.load(entityID, cfg, now)
	if err != nil {
		return nil, err
	}

	materialize(p, cfg, now)
	available := regenerated(p, cfg, now) + p.Bonus
	if available < amount && !allowOverMax {
		return nil, &game.InsufficientResourceError{
			EntityID:  entityID,
			Resource:  resourceType,
			Requested: amount,
			Available: available,
		}
	}

	// Surplus first, then the regular pool, clamped at zero.
	rest := amount
	if p.Bonus > 0 {
		spent := p.Bonus
		if spent > rest {
			spent = rest
		}
		p.Bonus -= spent
		rest -= spent
	}
	if rest > 0 {
		if cfg.Strategy == game.RegenCharges {
			consumeCharges(p.Charges, cfg, now, rest)
			// Keep the stored counter in step with the slots for reporting.
			p.Current = availableCharges(p.Charges, cfg.Interval, now)
		} else {
			p.Current -= rest
			if p.Current < 0 {
				p.Current = 0
			}
		}
	}
	p.LastUseAt = now

	if err := l.repo.SaveResourcePool(p); err != nil {
		return nil, err
	}
	return l.view(p, cfg, now), nil
}

// GrantBonus adds ephemeral surplus above max. The surplus is excluded from
// regeneration tracking: it is spent first on subsequent consumes and never
// restores on its own.
func (l *Ledger) GrantBonus(entityID, resourceType string, amount int) (*game.PoolView, error) {
	if entityID == "" {
		return nil, &game.ValidationError{Field: "entity_id", Reason: "must not be empty"}
	}
	if amount <= 0 {
		return nil, &game.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	cfg, err := l.config(resourceType)
	if err != nil {
		return nil, err
	}
	now := l.now()
	p, err := l.load(entityID, cfg, now)
	if err != nil {
		return nil, err
	}
	materialize(p, cfg, now)
	p.Bonus += amount
	if err := l.repo.SaveResourcePool(p); err != nil {
		return nil, err
	}
	return l.view(p, cfg, now), nil
}
