package services

import (
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"

	"gorm.io/gorm"
)

// Project inventory operations. Adjustments persist in the same transaction
// as the investment transition that triggers them.

// ReserveShares is the advisory availability check at request time. There is
// no hold; availability is re-validated when the sale commits.
func ReserveShares(project *models.Project, shares int) error {
	if shares <= 0 {
		return ErrInsufficientShares
	}
	if shares > project.RemainingShares() {
		return ErrInsufficientShares
	}
	return nil
}

// CommitSale increments shares_sold. Called exactly once per investment, on
// its transition to COMPLETED.
func CommitSale(tx *gorm.DB, project *models.Project, shares int) error {
	project.SharesSold += shares
	return tx.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("shares_sold", project.SharesSold).Error
}

// ReleaseShares decrements shares_sold, floored at zero. Called when a
// COMPLETED investment is refunded, withdrawn or reversed.
func ReleaseShares(tx *gorm.DB, project *models.Project, shares int) error {
	sold := project.SharesSold - shares
	if sold < 0 {
		sold = 0
	}
	project.SharesSold = sold
	return tx.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("shares_sold", sold).Error
}
