package storage

import (
	"errors"

	"github.com/ericogr/arena-engine/internal/game"
)

// ErrNotFound is returned by lookups when no record exists for the key.
// Components treat it as "create lazily with default state", never as a
// caller-visible failure.
var ErrNotFound = errors.New("record not found")

// Repository is the persistence contract consumed by every engine component.
// Implementations must provide atomic per-record read/write; no multi-record
// transaction is assumed (settlement processes defenders independently for
// exactly that reason).
//
// Every Save* method performs an optimistic-concurrency check: when the
// record already exists, the write succeeds only if the stored Version still
// matches the one that was loaded, and increments it. A failed check returns
// *game.ConcurrencyConflictError and leaves the store untouched.
type Repository interface {
	GetResourcePool(entityID, resourceType string) (*game.ResourcePool, error)
	SaveResourcePool(p *game.ResourcePool) error

	GetCurrencyAccount(entityID string) (*game.CurrencyAccount, error)
	SaveCurrencyAccount(a *game.CurrencyAccount) error

	GetInventoryItem(entityID, itemID string) (*game.InventoryItem, error)
	GetInventory(entityID string) ([]game.InventoryItem, error)
	SaveInventoryItem(it *game.InventoryItem) error

	CreateAttackIntent(in *game.AttackIntent) error
	GetAttackIntents(roundID uint) ([]game.AttackIntent, error)
	DeleteAttackIntents(roundID uint) error

	CreateRound(r *game.Round) error
	SaveRound(r *game.Round) error
	// GetCurrentRound returns the highest-numbered round, or ErrNotFound
	// when no round was ever started.
	GetCurrentRound() (*game.Round, error)

	// ListEntityIDs returns every entity known to the store (account or
	// inventory holders), sorted. Settlement uses it to enumerate income
	// eligibility and starting balances.
	ListEntityIDs() ([]string, error)
}
