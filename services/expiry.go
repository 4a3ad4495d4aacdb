package services

import (
	"fmt"
	"log"
	"time"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"

	"gorm.io/gorm"
)

// ExpireInvestment force-expires an APPROVED investment whose approval
// deadline has passed, failing any pending payment. Returns false when the
// investment is not expirable. Expiry is detected lazily: reads and the cron
// sweep call this, there is no live timer.
func ExpireInvestment(db *gorm.DB, inv *models.Investment, actorID uint) (bool, error) {
	if inv.Status != models.InvestmentStatusApproved {
		return false, nil
	}
	if inv.ApprovalExpiresAt == nil || !inv.ApprovalExpiresAt.Before(time.Now()) {
		return false, nil
	}

	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Investment
		if err := forUpdate(tx).First(&locked, inv.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.InvestmentStatusApproved {
			return ErrInvalidState
		}
		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).
			Update("status", models.InvestmentStatusExpired).Error; err != nil {
			return err
		}
		return failPendingPayment(tx, inv.ID, now)
	})
	if err == ErrInvalidState {
		// Lost the race to another transition; nothing to do.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	inv.Status = models.InvestmentStatusExpired

	if actorID == 0 {
		actorID = inv.InvestorID
	}
	project, investor := loadInvestmentRefs(db, inv)
	meta := investmentMetadata(inv, project, investor)
	if inv.ApprovalExpiresAt != nil {
		meta["expires_at"] = inv.ApprovalExpiresAt
	}
	RecordAudit(db, models.ActionInvestmentExpired, actorID, models.TargetInvestment, fmt.Sprint(inv.ID), meta)
	RecordProjectLedger(db, inv.ProjectID, models.ActionInvestmentExpired, actorID, meta)
	if project != nil {
		Notify(db, inv.InvestorID, "INVESTMENT_EXPIRED", "Investment request expired",
			fmt.Sprintf("Your investment request for %s has expired.", project.Title),
			fmt.Sprint(project.ID), "project")
	}
	return true, nil
}

// SweepExpiredInvestments expires every APPROVED investment past its
// deadline. Each expiry is its own unit of work so one failure does not
// block the rest. Returns the number of investments expired.
func SweepExpiredInvestments(db *gorm.DB) int {
	var expired []models.Investment
	if err := db.Where("status = ? AND approval_expires_at < ?", models.InvestmentStatusApproved, time.Now()).
		Find(&expired).Error; err != nil {
		log.Printf("[expiry] failed to list expired investments: %v", err)
		return 0
	}
	count := 0
	for i := range expired {
		ok, err := ExpireInvestment(db, &expired[i], 0)
		if err != nil {
			log.Printf("[expiry] failed to expire investment %d: %v", expired[i].ID, err)
			continue
		}
		if ok {
			count++
		}
	}
	return count
}
