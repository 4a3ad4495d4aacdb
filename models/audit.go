package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit action types. Closed set; adding a new state-changing operation means
// adding its action type here.
const (
	ActionProjectCreated   = "PROJECT_CREATED"
	ActionProjectUpdated   = "PROJECT_UPDATED"
	ActionProjectSubmitted = "PROJECT_SUBMITTED"
	ActionProjectApproved  = "PROJECT_APPROVED"
	ActionProjectRejected  = "PROJECT_REJECTED"
	ActionProjectArchived  = "PROJECT_ARCHIVED"

	ActionInvestmentRequested  = "INVESTMENT_REQUESTED"
	ActionInvestmentApproved   = "INVESTMENT_APPROVED"
	ActionInvestmentRejected   = "INVESTMENT_REJECTED"
	ActionInvestmentExpired    = "INVESTMENT_EXPIRED"
	ActionInvestmentProcessing = "INVESTMENT_PROCESSING"
	ActionInvestmentCompleted  = "INVESTMENT_COMPLETED"
	ActionInvestmentCancelled  = "INVESTMENT_CANCELLED"
	ActionInvestmentRefunded   = "INVESTMENT_REFUNDED"
	ActionInvestmentWithdrawn  = "INVESTMENT_WITHDRAWN"
	ActionInvestmentReversed   = "INVESTMENT_REVERSED"

	ActionPaymentProcessed = "PAYMENT_PROCESSED"
	ActionPaymentRefunded  = "PAYMENT_REFUNDED"
	ActionPaymentWithdrawn = "PAYMENT_WITHDRAWN"
	ActionPaymentReversed  = "PAYMENT_REVERSED"

	ActionUserBanned  = "USER_BANNED"
	ActionUserUpdated = "USER_UPDATED"
)

// Audit target types.
const (
	TargetProject    = "project"
	TargetUser       = "user"
	TargetInvestment = "investment"
	TargetPayment    = "payment"
)

// AuditLog is the global append-only event log. Rows are immutable facts and
// are never updated or deleted.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ActionType string         `gorm:"type:varchar(50);not null;index" json:"action_type"`
	ActorID    uint           `gorm:"not null;index" json:"actor_id"`
	TargetType string         `gorm:"type:varchar(50);not null" json:"target_type"`
	TargetID   string         `gorm:"type:varchar(191);not null;index" json:"target_id"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ProjectLedgerEntry mirrors AuditLog scoped to one project, so a project's
// full history can be reconstructed independent of global audit volume.
type ProjectLedgerEntry struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"not null;index" json:"project_id"`
	EntryType string         `gorm:"type:varchar(50);not null" json:"entry_type"`
	ActorID   uint           `gorm:"not null" json:"actor_id"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (ProjectLedgerEntry) TableName() string {
	return "project_ledger_entries"
}
