package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType is the closed set of supported input kinds. Rendering code
// switches exhaustively over these constants.
type QuestionType string

const (
	TypeShort     QuestionType = "short"
	TypeParagraph QuestionType = "paragraph"
	TypeRadio     QuestionType = "radio"
	TypeCheckbox  QuestionType = "checkbox"
	TypeDropdown  QuestionType = "dropdown"
	TypeRating    QuestionType = "rating"
)

func (t QuestionType) Valid() bool {
	switch t {
	case TypeShort, TypeParagraph, TypeRadio, TypeCheckbox, TypeDropdown, TypeRating:
		return true
	}
	return false
}

// RequiresOptions reports whether the type needs a non-empty option list.
func (t QuestionType) RequiresOptions() bool {
	switch t {
	case TypeRadio, TypeCheckbox, TypeDropdown:
		return true
	}
	return false
}

// QuestionExtra holds per-type settings, stored as an opaque JSON blob.
type QuestionExtra struct {
	Options []string `json:"options,omitempty"`
}

func (e QuestionExtra) Value() (driver.Value, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (e *QuestionExtra) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported type %T for QuestionExtra", value)
	}
}

// Question is a row of the flat question table. A row with a non-nil
// ParentQuestionID is a sub-question: it belongs to exactly one main question,
// carries a SubQuestionLabel, and is never itself a parent.
type Question struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	FormID           uint           `gorm:"not null;index" json:"form_id"`
	QText            string         `gorm:"type:text;not null" json:"q_text"`
	QType            QuestionType   `gorm:"type:varchar(20);not null" json:"q_type"`
	Required         bool           `gorm:"not null;default:false" json:"required"`
	OrderIndex       int            `gorm:"not null;default:0" json:"order_index"`
	Extra            *QuestionExtra `gorm:"type:text" json:"extra,omitempty"`
	ParentQuestionID *uint          `gorm:"index" json:"parent_question_id,omitempty"`
	SubQuestionLabel *string        `gorm:"size:255" json:"sub_question_label,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`

	// SubQuestions is derived on read, never persisted. ListByForm rebuilds it
	// from the flat table so it always matches current storage.
	SubQuestions []Question `gorm:"-" json:"sub_questions,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) IsSubQuestion() bool {
	return q.ParentQuestionID != nil
}
