package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection so the in-memory database is shared across sessions.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createProject(t *testing.T, db *gorm.DB, developer *models.User, totalValue int64, totalShares int, status string) *models.Project {
	t.Helper()
	project := models.Project{
		DeveloperID: developer.ID,
		Title:       "Harbor Lofts",
		Category:    "REAL_ESTATE",
		Status:      status,
		TotalValue:  decimal.NewFromInt(totalValue),
		TotalShares: totalShares,
	}
	require.NoError(t, db.Create(&project).Error)
	return &project
}

func reloadInvestment(t *testing.T, db *gorm.DB, id uint) *models.Investment {
	t.Helper()
	var inv models.Investment
	require.NoError(t, db.First(&inv, id).Error)
	return &inv
}

func reloadProject(t *testing.T, db *gorm.DB, id uint) *models.Project {
	t.Helper()
	var p models.Project
	require.NoError(t, db.First(&p, id).Error)
	return &p
}
