package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/shopgraph/internal/domain/shop"
)

// AutoMigrateAll creates the commerce source tables. Production sources are
// owned by the upstream shop database; this is for dev stacks and tests.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(shop.Models()...)
}
