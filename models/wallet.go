package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	WalletTxRefund     = "REFUND"
	WalletTxWithdraw   = "WITHDRAW"
	WalletTxReverse    = "REVERSE"
	WalletTxAdjustment = "ADJUSTMENT"
)

// Wallet holds a user's running balance. The core only ever credits it;
// money flows back to the user on refund/withdraw/reverse, never out.
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction is an append-only record of a single wallet credit.
// Reference is unique so a retried credit for the same triggering event
// cannot apply twice.
type WalletTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	WalletID     uint            `gorm:"not null;index" json:"wallet_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type         string          `gorm:"type:varchar(20);not null" json:"type"`
	Reference    string          `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference"`
	ProjectID    *uint           `gorm:"index" json:"project_id,omitempty"`
	ProjectName  *string         `gorm:"type:varchar(255)" json:"project_name,omitempty"`
	InvestmentID *uint           `gorm:"index" json:"investment_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
