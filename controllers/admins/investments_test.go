package admins

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/services"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedOpenProject(t *testing.T, db *gorm.DB, developer *models.User) *models.Project {
	t.Helper()
	project := models.Project{
		DeveloperID: developer.ID,
		Title:       "Harbor Lofts",
		Category:    "REAL_ESTATE",
		Status:      models.ProjectStatusApproved,
		TotalValue:  decimal.NewFromInt(1000),
		TotalShares: 10,
	}
	require.NoError(t, db.Create(&project).Error)
	return &project
}

func reviewRequest(t *testing.T, invID uint, adminID uint, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/investments/0/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDKey, adminID))
	return mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(invID)})
}

func TestReviewInvestmentHandlerExplicitZeroClampsToOneDay(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	investor := seedUser(t, db, "alice", models.RoleInvestor)
	developer := seedUser(t, db, "dev", models.RoleDeveloper)
	project := seedOpenProject(t, db, developer)

	inv, err := services.RequestInvestment(db, investor, project, 5, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	ReviewInvestmentHandler(rr, reviewRequest(t, inv.ID, admin.ID, `{"action":"approve","expires_in_days":0}`))
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.Investment
	require.NoError(t, db.First(&got, inv.ID).Error)
	require.Equal(t, models.InvestmentStatusApproved, got.Status)
	require.NotNil(t, got.ApprovalExpiresAt)

	window := time.Until(*got.ApprovalExpiresAt)
	require.Greater(t, window, 23*time.Hour)
	require.Less(t, window, 25*time.Hour)
}

func TestReviewInvestmentHandlerAbsentWindowDefaults(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	investor := seedUser(t, db, "alice", models.RoleInvestor)
	developer := seedUser(t, db, "dev", models.RoleDeveloper)
	project := seedOpenProject(t, db, developer)

	inv, err := services.RequestInvestment(db, investor, project, 5, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	ReviewInvestmentHandler(rr, reviewRequest(t, inv.ID, admin.ID, `{"action":"approve"}`))
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.Investment
	require.NoError(t, db.First(&got, inv.ID).Error)
	require.NotNil(t, got.ApprovalExpiresAt)

	window := time.Until(*got.ApprovalExpiresAt)
	require.Greater(t, window, 6*24*time.Hour)
	require.Less(t, window, 8*24*time.Hour)
}
