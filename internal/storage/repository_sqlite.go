package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ericogr/arena-engine/internal/game"
	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

// casUpdate writes all columns of an existing record guarded by the version
// check. RowsAffected == 0 means another writer got there first.
func (r *sqliteRepository) casUpdate(model interface{}, id uint, prevVersion int, key string) error {
	res := r.db.Model(model).
		Where("id = ? AND version = ?", id, prevVersion).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &game.ConcurrencyConflictError{Key: key}
	}
	return nil
}

func (r *sqliteRepository) GetResourcePool(entityID, resourceType string) (*game.ResourcePool, error) {
	var p game.ResourcePool
	err := r.db.Where("entity_id = ? AND resource_type = ?", entityID, resourceType).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sqliteRepository) SaveResourcePool(p *game.ResourcePool) error {
	if p.ID == 0 {
		p.Version = 1
		return r.db.Create(p).Error
	}
	prev := p.Version
	p.Version = prev + 1
	key := fmt.Sprintf("pool %s/%s", p.EntityID, p.ResourceType)
	if err := r.casUpdate(p, p.ID, prev, key); err != nil {
		p.Version = prev
		return err
	}
	return nil
}

func (r *sqliteRepository) GetCurrencyAccount(entityID string) (*game.CurrencyAccount, error) {
	var a game.CurrencyAccount
	err := r.db.Where("entity_id = ?", entityID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *sqliteRepository) SaveCurrencyAccount(a *game.CurrencyAccount) error {
	if a.ID == 0 {
		a.Version = 1
		return r.db.Create(a).Error
	}
	prev := a.Version
	a.Version = prev + 1
	if err := r.casUpdate(a, a.ID, prev, "account "+a.EntityID); err != nil {
		a.Version = prev
		return err
	}
	return nil
}

func (r *sqliteRepository) GetInventoryItem(entityID, itemID string) (*game.InventoryItem, error) {
	var it game.InventoryItem
	err := r.db.Where("entity_id = ? AND item_id = ?", entityID, itemID).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *sqliteRepository) GetInventory(entityID string) ([]game.InventoryItem, error) {
	var items []game.InventoryItem
	if err := r.db.Where("entity_id = ?", entityID).Order("item_id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *sqliteRepository) SaveInventoryItem(it *game.InventoryItem) error {
	if it.ID == 0 {
		it.Version = 1
		return r.db.Create(it).Error
	}
	prev := it.Version
	it.Version = prev + 1
	key := fmt.Sprintf("inventory %s/%s", it.EntityID, it.ItemID)
	if err := r.casUpdate(it, it.ID, prev, key); err != nil {
		it.Version = prev
		return err
	}
	return nil
}

func (r *sqliteRepository) CreateAttackIntent(in *game.AttackIntent) error {
	return r.db.Create(in).Error
}

func (r *sqliteRepository) GetAttackIntents(roundID uint) ([]game.AttackIntent, error) {
	var intents []game.AttackIntent
	if err := r.db.Where("round_id = ?", roundID).Order("id").Find(&intents).Error; err != nil {
		return nil, err
	}
	return intents, nil
}

func (r *sqliteRepository) DeleteAttackIntents(roundID uint) error {
	return r.db.Unscoped().Where("round_id = ?", roundID).Delete(&game.AttackIntent{}).Error
}

func (r *sqliteRepository) CreateRound(rd *game.Round) error {
	rd.Version = 1
	return r.db.Create(rd).Error
}

func (r *sqliteRepository) SaveRound(rd *game.Round) error {
	if rd.ID == 0 {
		return r.CreateRound(rd)
	}
	prev := rd.Version
	rd.Version = prev + 1
	if err := r.casUpdate(rd, rd.ID, prev, fmt.Sprintf("round %d", rd.Number)); err != nil {
		rd.Version = prev
		return err
	}
	return nil
}

func (r *sqliteRepository) GetCurrentRound() (*game.Round, error) {
	var rd game.Round
	err := r.db.Order("number DESC").First(&rd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *sqliteRepository) ListEntityIDs() ([]string, error) {
	var fromAccounts []string
	if err := r.db.Model(&game.CurrencyAccount{}).Distinct("entity_id").Pluck("entity_id", &fromAccounts).Error; err != nil {
		return nil, err
	}
	var fromInventory []string
	if err := r.db.Model(&game.InventoryItem{}).Distinct("entity_id").Pluck("entity_id", &fromInventory).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(fromAccounts)+len(fromInventory))
	out := make([]string, 0, len(seen))
	for _, id := range append(fromAccounts, fromInventory...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
