package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusSuccess   = "SUCCESS"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
	PaymentStatusWithdrawn = "WITHDRAWN"
	PaymentStatusReversed  = "REVERSED"
)

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID string          `gorm:"type:varchar(191);not null;uniqueIndex" json:"transaction_id"`
	InvestorID    uint            `gorm:"not null;index" json:"investor_id"`
	InvestmentID  uint            `gorm:"not null;index" json:"investment_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(50)" json:"payment_method"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
