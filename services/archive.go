package services

import (
	"fmt"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"

	"gorm.io/gorm"
)

// ArchiveProjectWithWithdrawals moves the project to ARCHIVED and withdraws
// every investment that is not already resolved, one unit of work per
// investment. Shares sold by completed investments are released and each
// investor is made whole through their wallet.
func ArchiveProjectWithWithdrawals(db *gorm.DB, project *models.Project, actor *models.User, note *string) error {
	if project.Status == models.ProjectStatusArchived {
		return nil
	}

	if err := db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("status", models.ProjectStatusArchived).Error; err != nil {
		return err
	}
	project.Status = models.ProjectStatusArchived

	adminNote := "Project archived"
	if note != nil && *note != "" {
		adminNote = *note
	}

	var investments []models.Investment
	if err := db.Where("project_id = ? AND status NOT IN ?", project.ID, models.ResolvedInvestmentStatuses).
		Find(&investments).Error; err != nil {
		return err
	}
	for i := range investments {
		if err := ApplyAdminAction(db, &investments[i], "withdraw", actor, &adminNote); err != nil {
			return fmt.Errorf("withdraw investment %d: %w", investments[i].ID, err)
		}
	}

	meta := map[string]interface{}{
		"project_id":   project.ID,
		"project_name": project.Title,
		"status":       project.Status,
		"note":         adminNote,
		"withdrawn":    len(investments),
	}
	RecordAudit(db, models.ActionProjectArchived, actor.ID, models.TargetProject, fmt.Sprint(project.ID), meta)
	RecordProjectLedger(db, project.ID, models.ActionProjectArchived, actor.ID, meta)
	return nil
}
