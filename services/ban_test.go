package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
)

func TestBanUserRequiresResolution(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	investor := createUser(t, db, "zed", models.RoleInvestor)
	inv, err := RequestInvestment(db, investor, project, 2, nil)
	require.NoError(t, err)

	// No resolution named: the ban is rejected and nothing changes
	require.ErrorIs(t, BanUser(db, investor, admin, "", nil), ErrResolutionRequired)
	require.False(t, reloadUser(t, db, investor.ID).IsBanned)
	require.Equal(t, models.InvestmentStatusRequested, reloadInvestment(t, db, inv.ID).Status)

	// Unknown resolution is rejected too
	require.ErrorIs(t, BanUser(db, investor, admin, "vaporize", nil), ErrInvalidAction)
}

func TestBanUserResolvesAndBans(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	investor := createUser(t, db, "tess", models.RoleInvestor)
	inv, err := RequestInvestment(db, investor, project, 5, nil)
	require.NoError(t, err)
	require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
	_, err = ProcessPayment(db, inv, investor, "card")
	require.NoError(t, err)
	require.NoError(t, CompleteInvestment(db, inv, admin, nil))

	require.NoError(t, BanUser(db, investor, admin, "refund", nil))

	require.True(t, reloadUser(t, db, investor.ID).IsBanned)
	require.Equal(t, models.InvestmentStatusRefunded, reloadInvestment(t, db, inv.ID).Status)
	require.Equal(t, 0, reloadProject(t, db, project.ID).SharesSold)

	wallet, err := GetOrCreateWallet(db, investor.ID)
	require.NoError(t, err)
	require.True(t, wallet.Balance.Equal(inv.TotalAmount))

	// The ban itself lands in the audit trail
	var banAudit int64
	db.Model(&models.AuditLog{}).Where("action_type = ?", models.ActionUserBanned).Count(&banAudit)
	require.Equal(t, int64(1), banAudit)
}

func TestBanUserWithoutInvestments(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	investor := createUser(t, db, "uma", models.RoleInvestor)

	require.NoError(t, BanUser(db, investor, admin, "", nil))
	require.True(t, reloadUser(t, db, investor.ID).IsBanned)
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}
