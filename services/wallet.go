package services

import (
	"errors"
	"log"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrCreateWallet lazily materializes a zero-balance wallet for the user.
func GetOrCreateWallet(db *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := db.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	wallet = models.Wallet{UserID: userID, Balance: decimal.Zero}
	if err := db.Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// CreditWallet adds amount to the user's balance and appends a
// WalletTransaction. The reference uniquely identifies the triggering event;
// a credit whose reference was already recorded is skipped, so retried admin
// requests cannot double-credit. Must run inside the caller's transaction so
// the credit commits or rolls back together with the owning state change.
func CreditWallet(tx *gorm.DB, userID uint, amount decimal.Decimal, txType string, project *models.Project, investment *models.Investment, reference string) error {
	var existing int64
	if err := tx.Model(&models.WalletTransaction{}).Where("reference = ?", reference).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Printf("[wallet] credit %s already applied, skipping", reference)
		return nil
	}

	wallet, err := GetOrCreateWallet(tx, userID)
	if err != nil {
		return err
	}
	// Lock the wallet row so concurrent credits serialize on the balance.
	if err := forUpdate(tx).First(wallet, wallet.ID).Error; err != nil {
		return err
	}
	newBalance := wallet.Balance.Add(amount)
	if err := tx.Model(wallet).Update("balance", newBalance).Error; err != nil {
		return err
	}

	wtx := models.WalletTransaction{
		WalletID:  wallet.ID,
		Amount:    amount,
		Type:      txType,
		Reference: reference,
	}
	if project != nil {
		wtx.ProjectID = &project.ID
		wtx.ProjectName = &project.Title
	}
	if investment != nil {
		wtx.InvestmentID = &investment.ID
	}
	return tx.Create(&wtx).Error
}
