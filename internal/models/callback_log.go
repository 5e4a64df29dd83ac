package models

import (
	"time"

	"gorm.io/datatypes"
)

// CallbackLog records every gateway webhook delivery, successful or not. The
// raw body is kept verbatim so undocumented payload shapes (Tigo Pesa, Airtel
// Money) can be reconciled against live traffic later.
type CallbackLog struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID       string         `gorm:"column:event_id;size:36;uniqueIndex" json:"eventId"`
	Gateway       string         `gorm:"column:gateway;size:50;not null;index" json:"gateway"`
	TransactionNo string         `gorm:"column:transaction_no;size:255;index" json:"transactionNo"`
	Outcome       string         `gorm:"column:outcome;size:255" json:"outcome"`
	Success       bool           `gorm:"column:success;default:false" json:"success"`
	RawBody       datatypes.JSON `gorm:"column:raw_body" json:"rawBody"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (CallbackLog) TableName() string {
	return "callback_logs"
}
