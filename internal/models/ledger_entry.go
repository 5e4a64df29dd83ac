package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LedgerIncome  = "income"
	LedgerExpense = "expense"
)

// LedgerEntry is an immutable finance record. Donation-derived entries carry
// the donation's transaction number in Reference and are never edited by the
// donation flow after creation.
type LedgerEntry struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string          `gorm:"column:entry_type;size:20;not null;index" json:"type"`
	Category    string          `gorm:"column:category;size:255;not null" json:"category"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Date        time.Time       `gorm:"column:entry_date;not null;index" json:"date"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Reference   string          `gorm:"column:reference;size:255;index" json:"reference"`
	BranchID    *uint           `gorm:"column:branch_id" json:"branchId"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
