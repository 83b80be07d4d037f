package types

import (
	"time"

	"github.com/google/uuid"
)

// Document is a durable asset: a binary promoted to object storage with its
// metadata row. One document belongs to exactly one process.
type Document struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProcessID  uuid.UUID `gorm:"type:uuid;column:process_id;not null;index" json:"process_id"`
	FileName   string    `gorm:"column:file_name;not null" json:"file_name"`
	FileType   string    `gorm:"column:file_type" json:"file_type"`
	FileURL    string    `gorm:"column:file_url;not null" json:"file_url"`
	FileSize   int64     `gorm:"column:file_size" json:"file_size"`
	FileHash   string    `gorm:"column:file_hash" json:"file_hash"`
	StorageKey string    `gorm:"column:storage_key;not null" json:"storage_key"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
