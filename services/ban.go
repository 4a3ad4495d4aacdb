package services

import (
	"fmt"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"

	"gorm.io/gorm"
)

// BanUser bans a user after resolving all of their unresolved investments
// with the admin-chosen resolution (refund, withdraw or reverse). When
// unresolved investments exist and no resolution is given the ban is
// rejected with ErrResolutionRequired and nothing is applied.
func BanUser(db *gorm.DB, user *models.User, admin *models.User, resolution string, note *string) error {
	var unresolved []models.Investment
	if err := db.Where("investor_id = ? AND status NOT IN ?", user.ID, models.ResolvedInvestmentStatuses).
		Find(&unresolved).Error; err != nil {
		return err
	}

	if len(unresolved) > 0 {
		if resolution == "" {
			return ErrResolutionRequired
		}
		if _, ok := adminActionStatus[resolution]; !ok {
			return ErrInvalidAction
		}
		banNote := "User banned"
		if note != nil && *note != "" {
			banNote = *note
		}
		for i := range unresolved {
			if err := ApplyAdminAction(db, &unresolved[i], resolution, admin, &banNote); err != nil {
				return fmt.Errorf("resolve investment %d: %w", unresolved[i].ID, err)
			}
		}
		// The ban only proceeds if every investment actually resolved.
		var remaining int64
		if err := db.Model(&models.Investment{}).
			Where("investor_id = ? AND status NOT IN ?", user.ID, models.ResolvedInvestmentStatuses).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return ErrResolutionRequired
		}
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_banned", true).Error; err != nil {
		return err
	}
	user.IsBanned = true

	meta := map[string]interface{}{
		"user_id":    user.ID,
		"user_email": user.Email,
		"resolution": resolution,
		"resolved":   len(unresolved),
	}
	if note != nil {
		meta["note"] = *note
	}
	RecordAudit(db, models.ActionUserBanned, admin.ID, models.TargetUser, fmt.Sprint(user.ID), meta)
	return nil
}
