package services

import (
	"fmt"
	"log"
	"time"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultApprovalDays = 7

// RequestInvestment creates a REQUESTED investment for the investor against
// the project, snapshotting the share price. Any stale APPROVED investment
// for the same pair is expired first, so a lapsed approval does not block a
// fresh request.
func RequestInvestment(db *gorm.DB, investor *models.User, project *models.Project, shares int, requestNote *string) (*models.Investment, error) {
	if investor.IsBanned {
		return nil, ErrInvestorBanned
	}
	if project.Status != models.ProjectStatusApproved {
		return nil, ErrProjectNotOpen
	}
	if err := ReserveShares(project, shares); err != nil {
		return nil, err
	}

	// Lazy sweep for this pair before checking the duplicate-active rule.
	var stale []models.Investment
	if err := db.Where("investor_id = ? AND project_id = ? AND status = ? AND approval_expires_at < ?",
		investor.ID, project.ID, models.InvestmentStatusApproved, time.Now()).Find(&stale).Error; err == nil {
		for i := range stale {
			if _, err := ExpireInvestment(db, &stale[i], investor.ID); err != nil {
				return nil, err
			}
		}
	}

	var active int64
	if err := db.Model(&models.Investment{}).
		Where("investor_id = ? AND project_id = ? AND status IN ?", investor.ID, project.ID, models.ActiveInvestmentStatuses).
		Count(&active).Error; err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrDuplicateActive
	}

	price := project.PerSharePrice()
	inv := models.Investment{
		InvestorID:    investor.ID,
		ProjectID:     project.ID,
		Shares:        shares,
		PricePerShare: price,
		TotalAmount:   price.Mul(decimal.NewFromInt(int64(shares))),
		Status:        models.InvestmentStatusRequested,
		RequestNote:   requestNote,
	}
	if err := db.Create(&inv).Error; err != nil {
		return nil, err
	}

	meta := investmentMetadata(&inv, project, investor)
	if requestNote != nil {
		meta["request_note"] = *requestNote
	}
	RecordAudit(db, models.ActionInvestmentRequested, investor.ID, models.TargetInvestment, fmt.Sprint(inv.ID), meta)
	RecordProjectLedger(db, project.ID, models.ActionInvestmentRequested, investor.ID, meta)
	NotifyAdmins(db, "INVESTMENT_REQUESTED", "New investment request",
		fmt.Sprintf("%s requested to invest in %s.", investor.Name, project.Title),
		fmt.Sprint(inv.ID), "investment")

	return &inv, nil
}

// ReviewInvestment applies an admin approve or reject to a REQUESTED
// investment. Re-approving an APPROVED investment is allowed and refreshes
// the approval window; the renewal is flagged in the recorded metadata.
// expiresInDays is clamped to a minimum of one day.
func ReviewInvestment(db *gorm.DB, inv *models.Investment, action string, reviewer *models.User, adminNote *string, expiresInDays int) error {
	if action != "approve" && action != "reject" {
		return ErrInvalidAction
	}
	isRequested := inv.Status == models.InvestmentStatusRequested
	isApproved := inv.Status == models.InvestmentStatusApproved
	if !isRequested && !(isApproved && action == "approve") {
		return ErrInvalidState
	}

	// Clamp the approval window to at least one day.
	if expiresInDays < 1 {
		expiresInDays = 1
	}

	renewed := isApproved
	var previousExpiry *time.Time
	if renewed {
		previousExpiry = inv.ApprovalExpiresAt
	}

	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Investment
		if err := forUpdate(tx).First(&locked, inv.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.InvestmentStatusRequested &&
			!(locked.Status == models.InvestmentStatusApproved && action == "approve") {
			return ErrInvalidState
		}

		updates := map[string]interface{}{
			"reviewed_at":    now,
			"reviewed_by_id": reviewer.ID,
		}
		if adminNote != nil {
			updates["admin_note"] = *adminNote
		}
		if action == "approve" {
			expiry := now.Add(time.Duration(expiresInDays) * 24 * time.Hour)
			updates["status"] = models.InvestmentStatusApproved
			updates["approval_expires_at"] = expiry
			inv.Status = models.InvestmentStatusApproved
			inv.ApprovalExpiresAt = &expiry
		} else {
			updates["status"] = models.InvestmentStatusRejected
			updates["approval_expires_at"] = nil
			inv.Status = models.InvestmentStatusRejected
			inv.ApprovalExpiresAt = nil
		}
		inv.ReviewedAt = &now
		inv.ReviewedByID = &reviewer.ID
		if adminNote != nil {
			inv.AdminNote = adminNote
		}
		return tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	project, investor := loadInvestmentRefs(db, inv)

	// A pending payment evidences the approval; creating it is secondary
	// bookkeeping and must not fail the review.
	if action == "approve" {
		ensurePendingPayment(db, inv)
	}

	actionType := models.ActionInvestmentApproved
	notifType := "INVESTMENT_APPROVED"
	label := "approved"
	if action == "reject" {
		actionType = models.ActionInvestmentRejected
		notifType = "INVESTMENT_REJECTED"
		label = "rejected"
	}

	meta := investmentMetadata(inv, project, investor)
	if adminNote != nil {
		meta["admin_note"] = *adminNote
	}
	if inv.ApprovalExpiresAt != nil {
		meta["expires_at"] = inv.ApprovalExpiresAt
	}
	if renewed {
		meta["renewed"] = true
		if previousExpiry != nil {
			meta["previous_expires_at"] = previousExpiry
		}
	}
	RecordAudit(db, actionType, reviewer.ID, models.TargetInvestment, fmt.Sprint(inv.ID), meta)
	RecordProjectLedger(db, inv.ProjectID, actionType, reviewer.ID, meta)
	if project != nil {
		Notify(db, inv.InvestorID, notifType, fmt.Sprintf("Investment %s", label),
			fmt.Sprintf("Your investment request for %s was %s.", project.Title, label),
			fmt.Sprint(project.ID), "project")
	}
	return nil
}

// ProcessPayment settles the pending payment for an APPROVED investment and
// moves it to PROCESSING. Payment capture is a stub that always succeeds.
func ProcessPayment(db *gorm.DB, inv *models.Investment, investor *models.User, paymentMethod string) (*models.Payment, error) {
	if investor.IsBanned {
		return nil, ErrInvestorBanned
	}
	if inv.Status != models.InvestmentStatusApproved {
		return nil, ErrInvalidState
	}
	if inv.ApprovalExpiresAt != nil && inv.ApprovalExpiresAt.Before(time.Now()) {
		if _, err := ExpireInvestment(db, inv, investor.ID); err != nil {
			return nil, err
		}
		return nil, ErrApprovalExpired
	}
	if paymentMethod == "" {
		paymentMethod = "card"
	}

	now := time.Now()
	var payment models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Investment
		if err := forUpdate(tx).First(&locked, inv.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.InvestmentStatusApproved {
			return ErrInvalidState
		}

		err := tx.Where("investment_id = ? AND status = ?", inv.ID, models.PaymentStatusPending).
			Order("created_at DESC").First(&payment).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"transaction_id": utils.GenerateTransactionID(),
				"status":         models.PaymentStatusSuccess,
				"payment_method": paymentMethod,
				"amount":         inv.TotalAmount,
				"processed_at":   now,
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return err
			}
			payment.Status = models.PaymentStatusSuccess
			payment.PaymentMethod = paymentMethod
			payment.Amount = inv.TotalAmount
			payment.ProcessedAt = &now
		case err == gorm.ErrRecordNotFound:
			payment = models.Payment{
				TransactionID: utils.GenerateTransactionID(),
				InvestorID:    inv.InvestorID,
				InvestmentID:  inv.ID,
				Amount:        inv.TotalAmount,
				Status:        models.PaymentStatusSuccess,
				PaymentMethod: paymentMethod,
				ProcessedAt:   &now,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		default:
			return err
		}

		inv.Status = models.InvestmentStatusProcessing
		return tx.Model(&models.Investment{}).Where("id = ?", inv.ID).
			Update("status", models.InvestmentStatusProcessing).Error
	})
	if err != nil {
		return nil, err
	}

	project, _ := loadInvestmentRefs(db, inv)

	payMeta := map[string]interface{}{
		"investment_id":  inv.ID,
		"status":         payment.Status,
		"transaction_id": payment.TransactionID,
		"payment_method": payment.PaymentMethod,
		"amount":         payment.Amount.String(),
	}
	if project != nil {
		payMeta["project_id"] = project.ID
		payMeta["project_name"] = project.Title
	}
	RecordAudit(db, models.ActionPaymentProcessed, investor.ID, models.TargetPayment, fmt.Sprint(payment.ID), payMeta)
	RecordProjectLedger(db, inv.ProjectID, models.ActionPaymentProcessed, investor.ID, payMeta)

	invMeta := investmentMetadata(inv, project, investor)
	invMeta["payment_id"] = payment.ID
	invMeta["transaction_id"] = payment.TransactionID
	RecordAudit(db, models.ActionInvestmentProcessing, investor.ID, models.TargetInvestment, fmt.Sprint(inv.ID), invMeta)
	RecordProjectLedger(db, inv.ProjectID, models.ActionInvestmentProcessing, investor.ID, invMeta)

	if project != nil {
		Notify(db, investor.ID, "PAYMENT_SUCCESS", "Payment received",
			fmt.Sprintf("Your payment for %s has been received and is processing.", project.Title),
			fmt.Sprint(project.ID), "project")
		NotifyAdmins(db, "INVESTMENT_PROCESSING", "Investment ready for review",
			fmt.Sprintf("Payment received for %s. Review to complete the investment.", project.Title),
			fmt.Sprint(inv.ID), "investment")
	}
	return &payment, nil
}

// CompleteInvestment commits the share sale for a PROCESSING investment.
func CompleteInvestment(db *gorm.DB, inv *models.Investment, admin *models.User, adminNote *string) error {
	if inv.Status != models.InvestmentStatusProcessing {
		return ErrInvalidState
	}

	now := time.Now()
	var project models.Project
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Investment
		if err := forUpdate(tx).First(&locked, inv.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.InvestmentStatusProcessing {
			return ErrInvalidState
		}
		if err := forUpdate(tx).First(&project, inv.ProjectID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":       models.InvestmentStatusCompleted,
			"completed_at": now,
		}
		if adminNote != nil {
			updates["admin_note"] = *adminNote
		}
		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
			return err
		}
		return CommitSale(tx, &project, inv.Shares)
	})
	if err != nil {
		return err
	}
	inv.Status = models.InvestmentStatusCompleted
	inv.CompletedAt = &now
	if adminNote != nil {
		inv.AdminNote = adminNote
	}

	_, investor := loadInvestmentRefs(db, inv)

	meta := investmentMetadata(inv, &project, investor)
	if adminNote != nil {
		meta["admin_note"] = *adminNote
	}
	RecordAudit(db, models.ActionInvestmentCompleted, admin.ID, models.TargetInvestment, fmt.Sprint(inv.ID), meta)
	RecordProjectLedger(db, inv.ProjectID, models.ActionInvestmentCompleted, admin.ID, meta)
	Notify(db, inv.InvestorID, "INVESTMENT_COMPLETED", "Investment completed",
		fmt.Sprintf("Your investment in %s has been completed.", project.Title),
		fmt.Sprint(project.ID), "project")
	return nil
}

// RevokeInvestment lets the investor withdraw their own REQUESTED or
// APPROVED investment. An APPROVED investment already past its deadline is
// expired instead of cancelled.
func RevokeInvestment(db *gorm.DB, inv *models.Investment, investor *models.User) error {
	if inv.Status != models.InvestmentStatusRequested && inv.Status != models.InvestmentStatusApproved {
		return ErrInvalidState
	}
	if inv.Status == models.InvestmentStatusApproved {
		expired, err := ExpireInvestment(db, inv, investor.ID)
		if err != nil {
			return err
		}
		if expired {
			return nil
		}
	}

	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Investment
		if err := forUpdate(tx).First(&locked, inv.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.InvestmentStatusRequested && locked.Status != models.InvestmentStatusApproved {
			return ErrInvalidState
		}
		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
			"status":              models.InvestmentStatusCancelled,
			"approval_expires_at": nil,
		}).Error; err != nil {
			return err
		}
		return failPendingPayment(tx, inv.ID, now)
	})
	if err != nil {
		return err
	}
	inv.Status = models.InvestmentStatusCancelled
	inv.ApprovalExpiresAt = nil

	project, _ := loadInvestmentRefs(db, inv)
	meta := investmentMetadata(inv, project, investor)
	RecordAudit(db, models.ActionInvestmentCancelled, investor.ID, models.TargetInvestment, fmt.Sprint(inv.ID), meta)
	RecordProjectLedger(db, inv.ProjectID, models.ActionInvestmentCancelled, investor.ID, meta)
	return nil
}

// adminActionStatus maps an admin action to the investment status, wallet
// transaction type, payment status and recorded action type it produces.
var adminActionStatus = map[string]struct {
	investment string
	walletTx   string
	payment    string
	action     string
	payAction  string
	label      string
}{
	"refund":   {models.InvestmentStatusRefunded, models.WalletTxRefund, models.PaymentStatusRefunded, models.ActionInvestmentRefunded, models.ActionPaymentRefunded, "refunded"},
	"withdraw": {models.InvestmentStatusWithdrawn, models.WalletTxWithdraw, models.PaymentStatusWithdrawn, models.ActionInvestmentWithdrawn, models.ActionPaymentWithdrawn, "withdrawn"},
	"reverse":  {models.InvestmentStatusReversed, models.WalletTxReverse, models.PaymentStatusReversed, models.ActionInvestmentReversed, models.ActionPaymentReversed, "reversed"},
}

// ApplyAdminAction refunds, withdraws or reverses an investment. A COMPLETED
// investment releases its shares back to the project; the investor's wallet
// is credited the full amount either way. Status, inventory and wallet
// mutate in one transaction; audit, ledger and notification records follow
// best-effort.
func ApplyAdminAction(db *gorm.DB, inv *models.Investment, action string, actor *models.User, adminNote *string) error {
	mapping, ok := adminActionStatus[action]
	if !ok {
		return ErrInvalidAction
	}
	if inv.IsResolved() {
		return ErrInvalidState
	}

	now := time.Now()
	var project models.Project
	var payment *models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked models.Investment
		if err := forUpdate(tx).First(&locked, inv.ID).Error; err != nil {
			return err
		}
		if (&locked).IsResolved() {
			return ErrInvalidState
		}
		if err := forUpdate(tx).First(&project, inv.ProjectID).Error; err != nil {
			return err
		}

		if locked.Status == models.InvestmentStatusCompleted {
			if err := ReleaseShares(tx, &project, inv.Shares); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": mapping.investment}
		if adminNote != nil {
			updates["admin_note"] = *adminNote
		}
		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
			return err
		}

		var latest models.Payment
		err := tx.Where("investment_id = ?", inv.ID).Order("created_at DESC").First(&latest).Error
		if err == nil {
			if err := tx.Model(&latest).Updates(map[string]interface{}{
				"status":       mapping.payment,
				"processed_at": now,
			}).Error; err != nil {
				return err
			}
			latest.Status = mapping.payment
			latest.ProcessedAt = &now
			payment = &latest
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		reference := fmt.Sprintf("%s-%d", mapping.walletTx, inv.ID)
		return CreditWallet(tx, inv.InvestorID, inv.TotalAmount, mapping.walletTx, &project, inv, reference)
	})
	if err != nil {
		return err
	}
	inv.Status = mapping.investment
	if adminNote != nil {
		inv.AdminNote = adminNote
	}

	_, investor := loadInvestmentRefs(db, inv)

	if payment != nil {
		payMeta := map[string]interface{}{
			"investment_id":  inv.ID,
			"project_id":     project.ID,
			"project_name":   project.Title,
			"status":         payment.Status,
			"transaction_id": payment.TransactionID,
			"amount":         payment.Amount.String(),
		}
		RecordAudit(db, mapping.payAction, actor.ID, models.TargetPayment, fmt.Sprint(payment.ID), payMeta)
		RecordProjectLedger(db, inv.ProjectID, mapping.payAction, actor.ID, payMeta)
	}

	meta := investmentMetadata(inv, &project, investor)
	meta["action"] = action
	if adminNote != nil {
		meta["admin_note"] = *adminNote
	}
	RecordAudit(db, mapping.action, actor.ID, models.TargetInvestment, fmt.Sprint(inv.ID), meta)
	RecordProjectLedger(db, inv.ProjectID, mapping.action, actor.ID, meta)
	Notify(db, inv.InvestorID, "INVESTMENT_"+mapping.investment, fmt.Sprintf("Investment %s", mapping.label),
		fmt.Sprintf("Your investment in %s was %s.", project.Title, mapping.label),
		fmt.Sprint(project.ID), "project")
	return nil
}

// ensurePendingPayment creates the PENDING payment evidencing an approval if
// no live payment exists yet. Best-effort.
func ensurePendingPayment(db *gorm.DB, inv *models.Investment) {
	var count int64
	if err := db.Model(&models.Payment{}).
		Where("investment_id = ? AND status IN ?", inv.ID, []string{models.PaymentStatusPending, models.PaymentStatusSuccess}).
		Count(&count).Error; err != nil {
		log.Printf("[investment] failed to check payments for investment %d: %v", inv.ID, err)
		return
	}
	if count > 0 {
		return
	}
	payment := models.Payment{
		TransactionID: utils.GeneratePendingReference(),
		InvestorID:    inv.InvestorID,
		InvestmentID:  inv.ID,
		Amount:        inv.TotalAmount,
		Status:        models.PaymentStatusPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		log.Printf("[investment] failed to create pending payment for investment %d: %v", inv.ID, err)
	}
}

func failPendingPayment(tx *gorm.DB, investmentID uint, now time.Time) error {
	var pending models.Payment
	err := tx.Where("investment_id = ? AND status = ?", investmentID, models.PaymentStatusPending).
		Order("created_at DESC").First(&pending).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Model(&pending).Updates(map[string]interface{}{
		"status":       models.PaymentStatusFailed,
		"processed_at": now,
	}).Error
}

func loadInvestmentRefs(db *gorm.DB, inv *models.Investment) (*models.Project, *models.User) {
	var project models.Project
	var investor models.User
	var p *models.Project
	var u *models.User
	if err := db.First(&project, inv.ProjectID).Error; err == nil {
		p = &project
	}
	if err := db.First(&investor, inv.InvestorID).Error; err == nil {
		u = &investor
	}
	return p, u
}
