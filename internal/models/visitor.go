package models

import "time"

type VisitorType string

const (
	VisitorGuest    VisitorType = "guest"
	VisitorInternal VisitorType = "internal"
)

// Visitor is created once at visitor login and never mutated afterwards.
type Visitor struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Type         VisitorType `gorm:"type:varchar(20);not null;index" json:"type"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Organization *string     `gorm:"size:100" json:"organization,omitempty"`
	IDNumber     *string     `gorm:"size:50" json:"id_number,omitempty"`
	Purpose      *string     `gorm:"size:255" json:"purpose,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (Visitor) TableName() string {
	return "visitors"
}
