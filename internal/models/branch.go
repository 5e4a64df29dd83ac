package models

import (
	"time"
)

// Branch is a church location. Donations and ledger entries reference it
// weakly; deleting a branch leaves their branch_id dangling on purpose.
type Branch struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Location  string    `gorm:"column:location;size:255" json:"location"`
	Pastor    string    `gorm:"column:pastor;size:255" json:"pastor"`
	Phone     string    `gorm:"column:phone;size:50" json:"phone"`
	Email     string    `gorm:"column:email;size:255" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Branch) TableName() string {
	return "branches"
}
