package database

import (
	"gorm.io/gorm"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
)

// AllModels lists every persisted model in migration order. Parent tables come
// first so foreign keys resolve during AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.RevokedToken{},
		&models.Project{},
		&models.ProjectArchiveRequest{},
		&models.Investment{},
		&models.Payment{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.AuditLog{},
		&models.ProjectLedgerEntry{},
		&models.Notification{},
	}
}

// Migrate runs AutoMigrate for the full schema. Migrations are additive only;
// column drops and renames need a reviewed manual migration.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
