package models

import "time"

// Response is created exactly once per submission and owns its answers.
type Response struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FormID          uint      `gorm:"not null;index" json:"form_id"`
	VisitorID       *uint     `gorm:"index" json:"visitor_id,omitempty"`
	SubmittedByUser *uint     `json:"submitted_by_user,omitempty"`
	SubmittedAt     time.Time `gorm:"autoCreateTime" json:"submitted_at"`

	Visitor *Visitor `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
	Answers []Answer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE;" json:"answers,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

// Answer stores one value for a leaf question (a main question without
// sub-questions, or a sub-question). Value is NULL for explicitly skipped
// questions and JSON text when the submitted value was an array or object.
// Rows are written once at submission time and never updated.
type Answer struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ResponseID uint    `gorm:"not null;index" json:"response_id"`
	QuestionID uint    `gorm:"not null;index" json:"question_id"`
	Value      *string `gorm:"type:text" json:"value"`
	FilePath   *string `gorm:"size:512" json:"file_path,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}
