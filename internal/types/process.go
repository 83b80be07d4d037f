package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Process is the core entity: a documented operational process. The rich-text
// body lives in DocumentByUser as {"html": "..."}; the AI-derived fields are
// filled in after video analysis and stay null otherwise.
type Process struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;column:company_id;not null;index" json:"company_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	Type        string    `gorm:"column:type;not null" json:"type"`
	Status      bool      `gorm:"column:status;not null;default:true" json:"status"`

	AreaID           *uuid.UUID `gorm:"type:uuid;column:area_id;index" json:"area_id,omitempty"`
	TeamID           *uuid.UUID `gorm:"type:uuid;column:team_id;index" json:"team_id,omitempty"`
	PersonInChargeID *uuid.UUID `gorm:"type:uuid;column:person_in_charge" json:"person_in_charge_id,omitempty"`

	VideoURL       *string        `gorm:"column:video_url" json:"video_url,omitempty"`
	DocumentByUser datatypes.JSON `gorm:"column:document_by_user;type:jsonb" json:"document_by_user,omitempty"`
	MarkmapByUser  *string        `gorm:"column:markmap_by_user" json:"markmap_by_user,omitempty"`
	DocumentByAI   *string        `gorm:"column:document_by_ai" json:"document_by_ai,omitempty"`
	MarkmapByAI    *string        `gorm:"column:markmap_by_ai" json:"markmap_by_ai,omitempty"`
	JSONByAI       datatypes.JSON `gorm:"column:json_by_ai;type:jsonb" json:"json_by_ai,omitempty"`
	StepsByAI      datatypes.JSON `gorm:"column:steps_by_ai;type:jsonb" json:"steps_by_ai,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by"`
	UpdatedBy uuid.UUID `gorm:"type:uuid;column:updated_by" json:"updated_by"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Process) TableName() string { return "processes" }
