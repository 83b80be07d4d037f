package types

import (
	"time"

	"github.com/google/uuid"
)

type Area struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;column:company_id;not null;index" json:"company_id"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	ManagerID   *uuid.UUID `gorm:"type:uuid;column:manager_id" json:"manager_id,omitempty"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;column:created_by" json:"created_by"`
	UpdatedBy   uuid.UUID  `gorm:"type:uuid;column:updated_by" json:"updated_by"`
	CreatedAt   time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Area) TableName() string { return "areas" }
