package types

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;column:company_id;not null;index" json:"company_id"`
	Name         string     `gorm:"column:name;not null" json:"name"`
	Description  *string    `gorm:"column:description" json:"description,omitempty"`
	AreaID       *uuid.UUID `gorm:"type:uuid;column:area_id;index" json:"area_id,omitempty"`
	TeamLeaderID *uuid.UUID `gorm:"type:uuid;column:team_leader_id" json:"team_leader_id,omitempty"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedBy    uuid.UUID  `gorm:"type:uuid;column:created_by" json:"created_by"`
	UpdatedBy    uuid.UUID  `gorm:"type:uuid;column:updated_by" json:"updated_by"`
	CreatedAt    time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Team) TableName() string { return "teams" }

type TeamMember struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID  uuid.UUID `gorm:"type:uuid;column:team_id;not null;index" json:"team_id"`
	UserID  uuid.UUID `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	Role    string    `gorm:"column:role;not null;default:'member'" json:"role"`
	AddedBy uuid.UUID `gorm:"type:uuid;column:added_by" json:"added_by"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (TeamMember) TableName() string { return "team_members" }
