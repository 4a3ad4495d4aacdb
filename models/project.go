package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProjectStatusDraft         = "DRAFT"
	ProjectStatusPendingReview = "PENDING_REVIEW"
	ProjectStatusApproved      = "APPROVED"
	ProjectStatusRejected      = "REJECTED"
	ProjectStatusNeedsChanges  = "NEEDS_CHANGES"
	ProjectStatusArchived      = "ARCHIVED"
)

type Project struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	DeveloperID      uint            `gorm:"not null;index" json:"developer_id"`
	Title            string          `gorm:"size:255;not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	ShortDescription string          `gorm:"size:500" json:"short_description"`
	Category         string          `gorm:"type:varchar(50);not null;default:'OTHER'" json:"category"`
	Status           string          `gorm:"type:varchar(50);not null;default:'DRAFT';index" json:"status"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_value"`
	TotalShares      int             `gorm:"not null" json:"total_shares"`
	SharesSold       int             `gorm:"not null;default:0" json:"shares_sold"`
	DurationDays     int             `gorm:"not null" json:"duration_days"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	ThumbnailURL     *string         `gorm:"type:varchar(255)" json:"thumbnail_url,omitempty"`

	// Restricted content, returned only to admins and approved investors.
	HasRestrictedFields  bool    `gorm:"not null;default:false" json:"has_restricted_fields"`
	FinancialProjections *string `gorm:"type:text" json:"financial_projections,omitempty"`
	BusinessPlan         *string `gorm:"type:text" json:"business_plan,omitempty"`
	TeamDetails          *string `gorm:"type:text" json:"team_details,omitempty"`
	RiskAssessment       *string `gorm:"type:text" json:"risk_assessment,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote  *string    `gorm:"type:text" json:"review_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Developer *User `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// PerSharePrice is total_value / total_shares, zero when no shares exist.
func (p *Project) PerSharePrice() decimal.Decimal {
	if p.TotalShares <= 0 {
		return decimal.Zero
	}
	return p.TotalValue.DivRound(decimal.NewFromInt(int64(p.TotalShares)), 2)
}

func (p *Project) RemainingShares() int {
	return p.TotalShares - p.SharesSold
}

// FundingProgress returns shares_sold / total_shares as a percentage.
func (p *Project) FundingProgress() float64 {
	if p.TotalShares <= 0 {
		return 0
	}
	return float64(p.SharesSold) / float64(p.TotalShares) * 100
}

const (
	ArchiveRequestPending  = "PENDING"
	ArchiveRequestApproved = "APPROVED"
	ArchiveRequestRejected = "REJECTED"
)

// ProjectArchiveRequest is the pending-approval workflow used when a
// developer (not an admin) asks to archive a published project.
type ProjectArchiveRequest struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProjectID    uint       `gorm:"not null;index" json:"project_id"`
	RequestedBy  uint       `gorm:"not null;index" json:"requested_by"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	ReviewNote   *string    `gorm:"type:text" json:"review_note,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByID *uint      `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (ProjectArchiveRequest) TableName() string {
	return "project_archive_requests"
}
