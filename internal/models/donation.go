package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation payment status lifecycle.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusRefunded   = "refunded"
)

// Donation types.
const (
	DonationOneTime   = "one-time"
	DonationMonthly   = "monthly"
	DonationQuarterly = "quarterly"
	DonationAnnually  = "annually"
)

// Donation categories.
const (
	CategoryTithe    = "tithe"
	CategoryOffering = "offering"
	CategoryMissions = "missions"
	CategoryBuilding = "building"
	CategoryCharity  = "charity"
	CategoryOther    = "other"
)

// Payment methods.
const (
	MethodMpesa       = "mpesa"
	MethodTigoPesa    = "tigopesa"
	MethodAirtelMoney = "airtelmoney"
	MethodBank        = "bank"
	MethodCard        = "card"
	MethodCash        = "cash"
)

type Donation struct {
	ID               uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	DonorName        string          `gorm:"column:donor_name;size:255;not null" json:"donorName"`
	DonorEmail       string          `gorm:"column:donor_email;size:255" json:"donorEmail"`
	DonorPhone       string          `gorm:"column:donor_phone;size:50" json:"donorPhone"`
	Anonymous        bool            `gorm:"column:anonymous;default:false" json:"anonymous"`
	Amount           decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Currency         string          `gorm:"column:currency;size:10;default:Tsh" json:"currency"`
	DonationType     string          `gorm:"column:donation_type;size:50;not null" json:"donationType"`
	Category         string          `gorm:"column:category;size:50;not null" json:"category"`
	PaymentMethod    string          `gorm:"column:payment_method;size:50;not null" json:"paymentMethod"`
	PaymentStatus    string          `gorm:"column:payment_status;size:50;default:pending;index" json:"paymentStatus"`
	TransactionNo    string          `gorm:"column:transaction_no;size:255;uniqueIndex" json:"transactionId"`
	PaymentReference string          `gorm:"column:payment_reference;size:255;index" json:"paymentReference"`
	BranchID         *uint           `gorm:"column:branch_id" json:"branchId"`
	ReceiptSent      bool            `gorm:"column:receipt_sent;default:false" json:"receiptSent"`
	ReceiptNo        string          `gorm:"column:receipt_no;size:255" json:"receiptId"`
	Notes            string          `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Donation) TableName() string {
	return "donations"
}

// ValidDonationType reports whether t is one of the recurring/one-off types.
func ValidDonationType(t string) bool {
	switch t {
	case DonationOneTime, DonationMonthly, DonationQuarterly, DonationAnnually:
		return true
	}
	return false
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryTithe, CategoryOffering, CategoryMissions, CategoryBuilding, CategoryCharity, CategoryOther:
		return true
	}
	return false
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodMpesa, MethodTigoPesa, MethodAirtelMoney, MethodBank, MethodCard, MethodCash:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// CanTransition encodes the donation state machine. Terminal states admit no
// exit except completed -> refunded.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusCompleted || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusRefunded
	default:
		return false
	}
}
