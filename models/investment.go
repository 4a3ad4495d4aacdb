package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvestmentStatusRequested  = "REQUESTED"
	InvestmentStatusApproved   = "APPROVED"
	InvestmentStatusRejected   = "REJECTED"
	InvestmentStatusExpired    = "EXPIRED"
	InvestmentStatusProcessing = "PROCESSING"
	InvestmentStatusCompleted  = "COMPLETED"
	InvestmentStatusCancelled  = "CANCELLED"
	InvestmentStatusRefunded   = "REFUNDED"
	InvestmentStatusWithdrawn  = "WITHDRAWN"
	InvestmentStatusReversed   = "REVERSED"
)

// ActiveInvestmentStatuses are the statuses that hold a live claim against a
// project and block a second request for the same (investor, project) pair.
var ActiveInvestmentStatuses = []string{
	InvestmentStatusRequested,
	InvestmentStatusApproved,
	InvestmentStatusProcessing,
}

// ResolvedInvestmentStatuses are terminal, non-active statuses.
var ResolvedInvestmentStatuses = []string{
	InvestmentStatusRejected,
	InvestmentStatusExpired,
	InvestmentStatusCancelled,
	InvestmentStatusRefunded,
	InvestmentStatusWithdrawn,
	InvestmentStatusReversed,
}

type Investment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvestorID    uint            `gorm:"not null;index" json:"investor_id"`
	ProjectID     uint            `gorm:"not null;index" json:"project_id"`
	Shares        int             `gorm:"not null" json:"shares"`
	PricePerShare decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price_per_share"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	Status        string          `gorm:"type:varchar(20);not null;default:'REQUESTED';index" json:"status"`
	RequestNote   *string         `gorm:"type:text" json:"request_note,omitempty"`
	AdminNote     *string         `gorm:"type:text" json:"admin_note,omitempty"`

	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByID      *uint      `json:"reviewed_by,omitempty"`
	ApprovalExpiresAt *time.Time `json:"approval_expires_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"-"`

	// Relations
	Investor *User    `gorm:"foreignKey:InvestorID" json:"investor,omitempty"`
	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Investment) TableName() string {
	return "investments"
}

// IsResolved reports whether the investment no longer holds shares nor blocks
// new requests for the same (investor, project) pair.
func (i *Investment) IsResolved() bool {
	for _, s := range ResolvedInvestmentStatuses {
		if i.Status == s {
			return true
		}
	}
	return false
}
