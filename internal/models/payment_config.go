package models

import (
	"time"
)

// PaymentConfig is a per-gateway settings row: credentials plus the display
// metadata the public site shows for bank/card methods. Secrets never leave
// the server; Public() is the only shape handlers may return.
type PaymentConfig struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"column:name;size:200;uniqueIndex;not null" json:"name"`
	Provider      string    `gorm:"column:provider;size:50;not null;index" json:"provider"`
	BaseURL       string    `gorm:"column:base_url;size:255" json:"baseUrl"`
	APIKey        string    `gorm:"column:api_key;type:text" json:"-"`
	APISecret     string    `gorm:"column:api_secret;type:text" json:"-"`
	MerchantID    string    `gorm:"column:merchant_id;size:150" json:"merchantId"`
	ShortCode     string    `gorm:"column:short_code;size:50" json:"shortCode"`
	AccountName   string    `gorm:"column:account_name;size:255" json:"accountName"`
	AccountNumber string    `gorm:"column:account_number;size:100" json:"accountNumber"`
	BankName      string    `gorm:"column:bank_name;size:255" json:"bankName"`
	BankBranch    string    `gorm:"column:bank_branch;size:255" json:"bankBranch"`
	SwiftCode     string    `gorm:"column:swift_code;size:50" json:"swiftCode"`
	IsActive      bool      `gorm:"column:is_active;default:false;index" json:"isActive"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (PaymentConfig) TableName() string {
	return "payment_configs"
}

// Public strips credentials for public-facing reads.
func (p PaymentConfig) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":            p.ID,
		"name":          p.Name,
		"provider":      p.Provider,
		"accountName":   p.AccountName,
		"accountNumber": p.AccountNumber,
		"bankName":      p.BankName,
		"bankBranch":    p.BankBranch,
		"swiftCode":     p.SwiftCode,
		"isActive":      p.IsActive,
	}
}
