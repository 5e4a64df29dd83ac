package models

import (
	"time"
)

// ImageBlob is the durable copy of an uploaded file. Filesystem copies under
// the uploads directories are disposable mirrors of this row; hosting wipes
// the disk, the database does not.
type ImageBlob struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename     string    `gorm:"column:filename;size:255;uniqueIndex;not null" json:"filename"`
	OriginalName string    `gorm:"column:original_name;size:255" json:"originalName"`
	MimeType     string    `gorm:"column:mime_type;size:100" json:"mimeType"`
	Size         int64     `gorm:"column:size;not null" json:"size"`
	Data         []byte    `gorm:"column:data;type:longblob;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ImageBlob) TableName() string {
	return "image_blobs"
}
