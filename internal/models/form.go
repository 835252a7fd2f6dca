package models

import "time"

// FormAudience declares which visitor types a form may be activated for.
type FormAudience string

const (
	AudienceGuest    FormAudience = "guest"
	AudienceInternal FormAudience = "internal"
	AudienceBoth     FormAudience = "both"
)

// AllowsVisitorType reports whether a form with this audience may be made the
// active form for the given visitor type.
func (a FormAudience) AllowsVisitorType(vt VisitorType) bool {
	switch vt {
	case VisitorGuest:
		return a == AudienceGuest || a == AudienceBoth
	case VisitorInternal:
		return a == AudienceInternal || a == AudienceBoth
	default:
		return false
	}
}

// Form groups a set of questions. Across all forms at most one carries
// IsActiveGuest and independently at most one carries IsActiveInternal; a
// single form may hold both flags.
type Form struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	Title            string       `gorm:"size:255;not null" json:"title"`
	Description      *string      `gorm:"type:text" json:"description,omitempty"`
	VisitorType      FormAudience `gorm:"type:varchar(20);not null;default:'both'" json:"visitor_type"`
	IsActiveGuest    bool         `gorm:"not null;default:false" json:"is_active_guest"`
	IsActiveInternal bool         `gorm:"not null;default:false" json:"is_active_internal"`
	CreatedBy        *uint        `json:"created_by,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`

	Questions []Question `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE;" json:"questions,omitempty"`
	Responses []Response `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE;" json:"responses,omitempty"`
}

func (Form) TableName() string {
	return "forms"
}
