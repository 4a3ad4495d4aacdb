package services

import (
	"encoding/json"
	"log"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The audit log and the project ledger are write-only sinks. Writes are
// best-effort: a bookkeeping failure is logged and swallowed so it can never
// roll back the state transition that triggered it.

func toJSON(metadata map[string]interface{}) datatypes.JSON {
	if metadata == nil {
		return nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("[ledger] failed to marshal metadata: %v", err)
		return nil
	}
	return datatypes.JSON(b)
}

// RecordAudit appends an entry to the global audit log.
func RecordAudit(db *gorm.DB, actionType string, actorID uint, targetType, targetID string, metadata map[string]interface{}) {
	entry := models.AuditLog{
		ActionType: actionType,
		ActorID:    actorID,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   toJSON(metadata),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[ledger] failed to write audit log %s target=%s:%s: %v", actionType, targetType, targetID, err)
	}
}

// RecordProjectLedger appends an entry to a project's ledger.
func RecordProjectLedger(db *gorm.DB, projectID uint, entryType string, actorID uint, metadata map[string]interface{}) {
	entry := models.ProjectLedgerEntry{
		ProjectID: projectID,
		EntryType: entryType,
		ActorID:   actorID,
		Metadata:  toJSON(metadata),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[ledger] failed to write project ledger entry %s project=%d: %v", entryType, projectID, err)
	}
}

// investmentMetadata builds the metadata snapshot shared by most
// investment-related audit and ledger entries.
func investmentMetadata(inv *models.Investment, project *models.Project, investor *models.User) map[string]interface{} {
	m := map[string]interface{}{
		"investment_id":   inv.ID,
		"status":          inv.Status,
		"shares":          inv.Shares,
		"price_per_share": inv.PricePerShare.String(),
		"amount":          inv.TotalAmount.String(),
	}
	if project != nil {
		m["project_id"] = project.ID
		m["project_name"] = project.Title
	}
	if investor != nil {
		m["investor_id"] = investor.ID
		m["investor_name"] = investor.Name
		m["investor_email"] = investor.Email
	}
	return m
}
