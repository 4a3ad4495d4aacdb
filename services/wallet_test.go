package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
)

func TestGetOrCreateWallet(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "wally", models.RoleInvestor)

	w1, err := GetOrCreateWallet(db, user.ID)
	require.NoError(t, err)
	require.True(t, w1.Balance.IsZero())

	w2, err := GetOrCreateWallet(db, user.ID)
	require.NoError(t, err)
	require.Equal(t, w1.ID, w2.ID)

	var count int64
	db.Model(&models.Wallet{}).Where("user_id = ?", user.ID).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestCreditWalletIdempotency(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "xena", models.RoleInvestor)

	credit := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			return CreditWallet(tx, user.ID, decimal.NewFromInt(500), models.WalletTxRefund, nil, nil, "REFUND-42")
		})
	}

	require.NoError(t, credit())
	// Replaying the same reference must not double-credit
	require.NoError(t, credit())

	wallet, err := GetOrCreateWallet(db, user.ID)
	require.NoError(t, err)
	require.True(t, wallet.Balance.Equal(decimal.NewFromInt(500)), "balance %s", wallet.Balance)

	var count int64
	db.Model(&models.WalletTransaction{}).Where("reference = ?", "REFUND-42").Count(&count)
	require.Equal(t, int64(1), count)
}

func TestCreditWalletDistinctReferencesAccumulate(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "yuri", models.RoleInvestor)

	for _, ref := range []string{"REFUND-1", "WITHDRAW-2", "REVERSE-3"} {
		ref := ref
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return CreditWallet(tx, user.ID, decimal.NewFromInt(100), models.WalletTxAdjustment, nil, nil, ref)
		}))
	}

	wallet, err := GetOrCreateWallet(db, user.ID)
	require.NoError(t, err)
	require.True(t, wallet.Balance.Equal(decimal.NewFromInt(300)), "balance %s", wallet.Balance)
}
