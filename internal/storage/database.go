package storage

import (
	"github.com/ericogr/arena-engine/internal/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the sqlite database at the given path and brings the
// schema up to date. Resource type and item definitions are intentionally
// NOT persisted: they are content supplied by the configuration file, which
// stays the single source of truth.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&game.ResourcePool{},
		&game.CurrencyAccount{},
		&game.InventoryItem{},
		&game.AttackIntent{},
		&game.Round{},
	)
	if err != nil {
		return nil, err
	}

	// Explicit unique indexes for the composite natural keys. AutoMigrate
	// creates them from the struct tags, but older databases may predate
	// the tags, so enforce them here as well.
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_pool_entity_type ON resource_pools(entity_id, resource_type);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_entity_item ON inventory_items(entity_id, item_id);",
	}
	for _, s := range stmts {
		if execErr := db.Exec(s).Error; execErr != nil {
			return nil, execErr
		}
	}
	return db, nil
}
