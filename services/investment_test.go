package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
)

func TestInvestmentLifecycle(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	investor := createUser(t, db, "alice", models.RoleInvestor)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	// Request 10 shares at the snapshotted per-share price
	inv, err := RequestInvestment(db, investor, project, 10, nil)
	require.NoError(t, err)
	require.Equal(t, models.InvestmentStatusRequested, inv.Status)
	require.True(t, inv.PricePerShare.Equal(decimal.NewFromInt(100)), "price per share %s", inv.PricePerShare)
	require.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000)), "total %s", inv.TotalAmount)

	// Approve with a 7-day payment window
	require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
	require.Equal(t, models.InvestmentStatusApproved, inv.Status)
	require.NotNil(t, inv.ApprovalExpiresAt)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), *inv.ApprovalExpiresAt, time.Minute)

	// Approval produces a pending payment
	var pending models.Payment
	require.NoError(t, db.Where("investment_id = ? AND status = ?", inv.ID, models.PaymentStatusPending).First(&pending).Error)
	require.True(t, strings.HasPrefix(pending.TransactionID, "PENDING-"))

	// Pay: the pending payment settles and the investment starts processing
	payment, err := ProcessPayment(db, inv, investor, "card")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusSuccess, payment.Status)
	require.True(t, strings.HasPrefix(payment.TransactionID, "TXN-"))
	require.True(t, payment.Amount.Equal(decimal.NewFromInt(1000)))
	require.Equal(t, models.InvestmentStatusProcessing, reloadInvestment(t, db, inv.ID).Status)

	// Complete: shares are committed to the project
	require.NoError(t, CompleteInvestment(db, inv, admin, nil))
	require.Equal(t, models.InvestmentStatusCompleted, reloadInvestment(t, db, inv.ID).Status)
	require.Equal(t, 10, reloadProject(t, db, project.ID).SharesSold)

	// Reverse: shares return and the investor is made whole in their wallet
	inv = reloadInvestment(t, db, inv.ID)
	require.NoError(t, ApplyAdminAction(db, inv, "reverse", admin, nil))
	require.Equal(t, models.InvestmentStatusReversed, reloadInvestment(t, db, inv.ID).Status)
	require.Equal(t, 0, reloadProject(t, db, project.ID).SharesSold)

	wallet, err := GetOrCreateWallet(db, investor.ID)
	require.NoError(t, err)
	require.True(t, wallet.Balance.Equal(decimal.NewFromInt(1000)), "wallet balance %s", wallet.Balance)

	var wtx models.WalletTransaction
	require.NoError(t, db.Where("wallet_id = ?", wallet.ID).First(&wtx).Error)
	require.Equal(t, models.WalletTxReverse, wtx.Type)
	require.Contains(t, wtx.Reference, "REVERSE-")

	// The settled payment carries the terminal status
	var settled models.Payment
	require.NoError(t, db.First(&settled, payment.ID).Error)
	require.Equal(t, models.PaymentStatusReversed, settled.Status)

	// Audit trail covers the whole lifecycle
	var auditCount int64
	db.Model(&models.AuditLog{}).Count(&auditCount)
	require.GreaterOrEqual(t, auditCount, int64(5))
	var ledgerCount int64
	db.Model(&models.ProjectLedgerEntry{}).Where("project_id = ?", project.ID).Count(&ledgerCount)
	require.GreaterOrEqual(t, ledgerCount, int64(5))
}

func TestRequestInvestmentValidation(t *testing.T) {
	db := newTestDB(t)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	investor := createUser(t, db, "bob", models.RoleInvestor)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	t.Run("banned investor", func(t *testing.T) {
		banned := createUser(t, db, "banned", models.RoleInvestor)
		banned.IsBanned = true
		require.NoError(t, db.Save(banned).Error)
		_, err := RequestInvestment(db, banned, project, 1, nil)
		require.ErrorIs(t, err, ErrInvestorBanned)
	})

	t.Run("project not open", func(t *testing.T) {
		draft := createProject(t, db, developer, 1000, 10, models.ProjectStatusDraft)
		_, err := RequestInvestment(db, investor, draft, 1, nil)
		require.ErrorIs(t, err, ErrProjectNotOpen)
	})

	t.Run("insufficient shares", func(t *testing.T) {
		_, err := RequestInvestment(db, investor, project, 11, nil)
		require.ErrorIs(t, err, ErrInsufficientShares)
		_, err = RequestInvestment(db, investor, project, 0, nil)
		require.ErrorIs(t, err, ErrInsufficientShares)
	})

	t.Run("duplicate active", func(t *testing.T) {
		_, err := RequestInvestment(db, investor, project, 2, nil)
		require.NoError(t, err)
		_, err = RequestInvestment(db, investor, project, 3, nil)
		require.ErrorIs(t, err, ErrDuplicateActive)
	})
}

func TestReviewInvestment(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	t.Run("reject clears the approval window", func(t *testing.T) {
		investor := createUser(t, db, "carol", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		note := "insufficient documentation"
		require.NoError(t, ReviewInvestment(db, inv, "reject", admin, &note, 7))
		fresh := reloadInvestment(t, db, inv.ID)
		require.Equal(t, models.InvestmentStatusRejected, fresh.Status)
		require.Nil(t, fresh.ApprovalExpiresAt)
	})

	t.Run("expiry window clamps to one day minimum", func(t *testing.T) {
		investor := createUser(t, db, "dave", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, -5))
		require.NotNil(t, inv.ApprovalExpiresAt)
		require.WithinDuration(t, time.Now().Add(24*time.Hour), *inv.ApprovalExpiresAt, time.Minute)
	})

	t.Run("re-approve renews the window", func(t *testing.T) {
		investor := createUser(t, db, "erin", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 1))
		first := *inv.ApprovalExpiresAt
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
		require.True(t, inv.ApprovalExpiresAt.After(first))
	})

	t.Run("unknown action", func(t *testing.T) {
		investor := createUser(t, db, "frank", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.ErrorIs(t, ReviewInvestment(db, inv, "escalate", admin, nil, 7), ErrInvalidAction)
	})

	t.Run("reject of approved is invalid", func(t *testing.T) {
		investor := createUser(t, db, "gwen", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
		require.ErrorIs(t, ReviewInvestment(db, inv, "reject", admin, nil, 7), ErrInvalidState)
	})
}

// forceExpire backdates an approval so the deadline is in the past.
func forceExpire(t *testing.T, db *gorm.DB, inv *models.Investment) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Investment{}).Where("id = ?", inv.ID).
		Update("approval_expires_at", past).Error)
	inv.ApprovalExpiresAt = &past
}

func TestLazyExpiry(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	investor := createUser(t, db, "hank", models.RoleInvestor)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	inv, err := RequestInvestment(db, investor, project, 2, nil)
	require.NoError(t, err)
	require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
	forceExpire(t, db, inv)

	// Paying past the deadline expires instead of settling
	_, err = ProcessPayment(db, inv, investor, "card")
	require.ErrorIs(t, err, ErrApprovalExpired)
	require.Equal(t, models.InvestmentStatusExpired, reloadInvestment(t, db, inv.ID).Status)

	// The pending payment is failed, not left dangling
	var failed models.Payment
	require.NoError(t, db.Where("investment_id = ?", inv.ID).First(&failed).Error)
	require.Equal(t, models.PaymentStatusFailed, failed.Status)

	// The expired row no longer blocks a fresh request for the same pair
	_, err = RequestInvestment(db, investor, project, 2, nil)
	require.NoError(t, err)
}

func TestSweepExpiredInvestments(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	var stale []*models.Investment
	for _, name := range []string{"ivy", "jack"} {
		investor := createUser(t, db, name, models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
		forceExpire(t, db, inv)
		stale = append(stale, inv)
	}

	// One live approval that must survive the sweep
	live := createUser(t, db, "kate", models.RoleInvestor)
	liveInv, err := RequestInvestment(db, live, project, 1, nil)
	require.NoError(t, err)
	require.NoError(t, ReviewInvestment(db, liveInv, "approve", admin, nil, 7))

	require.Equal(t, 2, SweepExpiredInvestments(db))
	for _, inv := range stale {
		require.Equal(t, models.InvestmentStatusExpired, reloadInvestment(t, db, inv.ID).Status)
	}
	require.Equal(t, models.InvestmentStatusApproved, reloadInvestment(t, db, liveInv.ID).Status)

	// Second sweep finds nothing
	require.Equal(t, 0, SweepExpiredInvestments(db))
}

func TestRevokeInvestment(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	t.Run("requested cancels", func(t *testing.T) {
		investor := createUser(t, db, "liam", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, RevokeInvestment(db, inv, investor))
		require.Equal(t, models.InvestmentStatusCancelled, reloadInvestment(t, db, inv.ID).Status)
	})

	t.Run("approved cancels and fails pending payment", func(t *testing.T) {
		investor := createUser(t, db, "mia", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
		require.NoError(t, RevokeInvestment(db, inv, investor))
		require.Equal(t, models.InvestmentStatusCancelled, reloadInvestment(t, db, inv.ID).Status)

		var payment models.Payment
		require.NoError(t, db.Where("investment_id = ?", inv.ID).First(&payment).Error)
		require.Equal(t, models.PaymentStatusFailed, payment.Status)
	})

	t.Run("approved past deadline expires instead", func(t *testing.T) {
		investor := createUser(t, db, "noah", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
		forceExpire(t, db, inv)
		require.NoError(t, RevokeInvestment(db, inv, investor))
		require.Equal(t, models.InvestmentStatusExpired, reloadInvestment(t, db, inv.ID).Status)
	})

	t.Run("processing cannot be revoked", func(t *testing.T) {
		investor := createUser(t, db, "olga", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
		_, err = ProcessPayment(db, inv, investor, "card")
		require.NoError(t, err)
		require.ErrorIs(t, RevokeInvestment(db, inv, investor), ErrInvalidState)
	})
}

func TestApplyAdminAction(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	t.Run("refund before completion leaves inventory alone", func(t *testing.T) {
		investor := createUser(t, db, "pam", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 3, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "approve", admin, nil, 7))
		_, err = ProcessPayment(db, inv, investor, "card")
		require.NoError(t, err)

		soldBefore := reloadProject(t, db, project.ID).SharesSold
		require.NoError(t, ApplyAdminAction(db, inv, "refund", admin, nil))
		require.Equal(t, models.InvestmentStatusRefunded, reloadInvestment(t, db, inv.ID).Status)
		require.Equal(t, soldBefore, reloadProject(t, db, project.ID).SharesSold)

		wallet, err := GetOrCreateWallet(db, investor.ID)
		require.NoError(t, err)
		require.True(t, wallet.Balance.Equal(inv.TotalAmount))
	})

	t.Run("action on resolved investment is invalid", func(t *testing.T) {
		investor := createUser(t, db, "quinn", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.NoError(t, ReviewInvestment(db, inv, "reject", admin, nil, 7))
		inv = reloadInvestment(t, db, inv.ID)
		require.ErrorIs(t, ApplyAdminAction(db, inv, "refund", admin, nil), ErrInvalidState)
	})

	t.Run("unknown action", func(t *testing.T) {
		investor := createUser(t, db, "ruth", models.RoleInvestor)
		inv, err := RequestInvestment(db, investor, project, 1, nil)
		require.NoError(t, err)
		require.ErrorIs(t, ApplyAdminAction(db, inv, "obliterate", admin, nil), ErrInvalidAction)
	})
}
