package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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

// seedStaleApproval creates an APPROVED investment whose payment deadline is
// already in the past, with its pending payment row in place.
func seedStaleApproval(t *testing.T, db *gorm.DB, investor *models.User) *models.Investment {
	t.Helper()
	developer := seedUser(t, db, "dev-"+investor.Name, models.RoleDeveloper)
	admin := seedUser(t, db, "admin-"+investor.Name, models.RoleAdmin)
	project := models.Project{
		DeveloperID: developer.ID,
		Title:       "Harbor Lofts",
		Category:    "REAL_ESTATE",
		Status:      models.ProjectStatusApproved,
		TotalValue:  decimal.NewFromInt(1000),
		TotalShares: 10,
	}
	require.NoError(t, db.Create(&project).Error)

	inv, err := services.RequestInvestment(db, investor, &project, 5, nil)
	require.NoError(t, err)
	require.NoError(t, services.ReviewInvestment(db, inv, "approve", admin, nil, 7))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Investment{}).Where("id = ?", inv.ID).
		Update("approval_expires_at", past).Error)
	inv.ApprovalExpiresAt = &past
	return inv
}

func authedGet(target string, userID uint, vars map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDKey, userID))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestGetInvestmentHandlerExpiresStaleApproval(t *testing.T) {
	db := setupTestDB(t)
	investor := seedUser(t, db, "alice", models.RoleInvestor)
	inv := seedStaleApproval(t, db, investor)

	rr := httptest.NewRecorder()
	GetInvestmentHandler(rr, authedGet("/v1/investments/0", investor.ID, map[string]string{"id": fmt.Sprint(inv.ID)}))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data struct {
			Investment models.Investment `json:"investment"`
			Payments   []models.Payment  `json:"payments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, models.InvestmentStatusExpired, resp.Data.Investment.Status)

	var got models.Investment
	require.NoError(t, db.First(&got, inv.ID).Error)
	require.Equal(t, models.InvestmentStatusExpired, got.Status)

	var payment models.Payment
	require.NoError(t, db.Where("investment_id = ?", inv.ID).First(&payment).Error)
	require.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestListInvestmentsHandlerExpiresStaleApprovals(t *testing.T) {
	db := setupTestDB(t)
	investor := seedUser(t, db, "bob", models.RoleInvestor)
	inv := seedStaleApproval(t, db, investor)

	rr := httptest.NewRecorder()
	ListInvestmentsHandler(rr, authedGet("/v1/investments", investor.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []models.Investment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, models.InvestmentStatusExpired, resp.Data[0].Status)

	var got models.Investment
	require.NoError(t, db.First(&got, inv.ID).Error)
	require.Equal(t, models.InvestmentStatusExpired, got.Status)
}
