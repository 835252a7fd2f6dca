package services

import (
	"errors"
	"strings"

	"github.com/gia-feedback/feedback-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionService persists question definitions and rebuilds the two-level
// question tree from the flat questions table.
type QuestionService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewQuestionService(db *gorm.DB, log *zap.Logger) *QuestionService {
	return &QuestionService{db: db, log: log}
}

type CreateQuestionInput struct {
	QText            string                `json:"q_text"`
	QType            models.QuestionType   `json:"q_type"`
	Required         bool                  `json:"required"`
	OrderIndex       int                   `json:"order_index"`
	Extra            *models.QuestionExtra `json:"extra"`
	ParentQuestionID *uint                 `json:"parent_question_id"`
	SubQuestionLabel *string               `json:"sub_question_label"`
}

type UpdateQuestionInput struct {
	QText            *string               `json:"q_text"`
	QType            *models.QuestionType  `json:"q_type"`
	Required         *bool                 `json:"required"`
	OrderIndex       *int                  `json:"order_index"`
	Extra            *models.QuestionExtra `json:"extra"`
	ParentQuestionID *uint                 `json:"parent_question_id"`
	SubQuestionLabel *string               `json:"sub_question_label"`
}

func (s *QuestionService) Create(formID uint, in CreateQuestionInput) (uint, error) {
	in.QText = strings.TrimSpace(in.QText)
	if in.QText == "" {
		return 0, NewValidationError("q_text", "question text is required")
	}
	if !in.QType.Valid() {
		return 0, NewValidationError("q_type", "invalid question type")
	}
	if err := validateOptions(in.QType, in.Extra); err != nil {
		return 0, err
	}

	var form models.Form
	if err := s.db.First(&form, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NewNotFoundError("form", formID)
		}
		return 0, storageErr("load form", err)
	}

	if in.ParentQuestionID != nil {
		if err := s.validateParent(formID, *in.ParentQuestionID, in.SubQuestionLabel); err != nil {
			return 0, err
		}
	}

	question := models.Question{
		FormID:           formID,
		QText:            in.QText,
		QType:            in.QType,
		Required:         in.Required,
		OrderIndex:       in.OrderIndex,
		Extra:            in.Extra,
		ParentQuestionID: in.ParentQuestionID,
		SubQuestionLabel: trimPtr(in.SubQuestionLabel),
	}
	if err := s.db.Create(&question).Error; err != nil {
		return 0, storageErr("create question", err)
	}
	return question.ID, nil
}

func (s *QuestionService) Update(id uint, in UpdateQuestionInput) error {
	var question models.Question
	if err := s.db.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("question", id)
		}
		return storageErr("load question", err)
	}

	if in.QText != nil {
		text := strings.TrimSpace(*in.QText)
		if text == "" {
			return NewValidationError("q_text", "question text cannot be empty")
		}
		question.QText = text
	}
	if in.QType != nil {
		if !in.QType.Valid() {
			return NewValidationError("q_type", "invalid question type")
		}
		question.QType = *in.QType
	}
	if in.Extra != nil {
		question.Extra = in.Extra
	}
	// Option validation applies to the question's effective state, so a type
	// change to a choice type without stored options still fails.
	if err := validateOptions(question.QType, question.Extra); err != nil {
		return err
	}
	if in.Required != nil {
		question.Required = *in.Required
	}
	if in.OrderIndex != nil {
		question.OrderIndex = *in.OrderIndex
	}
	if in.ParentQuestionID != nil {
		if *in.ParentQuestionID == id {
			return NewValidationError("parent_question_id", "question cannot be its own parent")
		}
		var childCount int64
		if err := s.db.Model(&models.Question{}).Where("parent_question_id = ?", id).Count(&childCount).Error; err != nil {
			return storageErr("count sub-questions", err)
		}
		if childCount > 0 {
			return NewValidationError("parent_question_id", "question with sub-questions cannot become a sub-question")
		}
		label := in.SubQuestionLabel
		if label == nil {
			label = question.SubQuestionLabel
		}
		if err := s.validateParent(question.FormID, *in.ParentQuestionID, label); err != nil {
			return err
		}
		question.ParentQuestionID = in.ParentQuestionID
	}
	if in.SubQuestionLabel != nil {
		label := trimPtr(in.SubQuestionLabel)
		if label == nil && question.ParentQuestionID != nil {
			return NewValidationError("sub_question_label", "sub-questions require a label")
		}
		question.SubQuestionLabel = label
	}

	if err := s.db.Save(&question).Error; err != nil {
		return storageErr("update question", err)
	}
	return nil
}

// Delete removes a question, its sub-questions, and any answers referencing
// them. The cascade is issued explicitly inside a transaction rather than left
// to the schema, so stale answer rows cannot linger with no question to join.
func (s *QuestionService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Question{}, id)
		if result.Error != nil {
			return storageErr("delete question", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError("question", id)
		}
		var childIDs []uint
		if err := tx.Model(&models.Question{}).Where("parent_question_id = ?", id).Pluck("id", &childIDs).Error; err != nil {
			return storageErr("list sub-questions", err)
		}
		if err := tx.Where("question_id IN ?", append(childIDs, id)).Delete(&models.Answer{}).Error; err != nil {
			return storageErr("delete question answers", err)
		}
		if err := tx.Where("parent_question_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return storageErr("delete sub-questions", err)
		}
		return nil
	})
}

// ListByForm returns the form's main questions in canonical order, each with
// its SubQuestions populated. The tree is rebuilt from the flat table on every
// call with a two-pass build: main questions are indexed by id first, then
// each sub-question is attached to its parent via map lookup. A sub-question
// whose parent is missing is dropped from the result with a warning.
func (s *QuestionService) ListByForm(formID uint) ([]models.Question, error) {
	rows, err := s.fetchOrdered(formID)
	if err != nil {
		return nil, err
	}

	mains := make([]models.Question, 0, len(rows))
	index := make(map[uint]int, len(rows))
	for _, q := range rows {
		if q.ParentQuestionID == nil {
			index[q.ID] = len(mains)
			mains = append(mains, q)
		}
	}
	for _, q := range rows {
		if q.ParentQuestionID == nil {
			continue
		}
		i, ok := index[*q.ParentQuestionID]
		if !ok {
			s.log.Warn("dropping orphaned sub-question",
				zap.Uint("question_id", q.ID),
				zap.Uint("parent_question_id", *q.ParentQuestionID))
			continue
		}
		mains[i].SubQuestions = append(mains[i].SubQuestions, q)
	}
	return mains, nil
}

// GetByID returns a single question with its direct sub-questions (one level).
func (s *QuestionService) GetByID(id uint) (*models.Question, error) {
	var question models.Question
	if err := s.db.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("question", id)
		}
		return nil, storageErr("load question", err)
	}
	if err := s.db.
		Where("parent_question_id = ?", id).
		Order("order_index asc, id asc").
		Find(&question.SubQuestions).Error; err != nil {
		return nil, storageErr("load sub-questions", err)
	}
	return &question, nil
}

// fetchOrdered reads all rows for a form in the canonical order: order_index,
// then parent id with main questions first, then id.
func (s *QuestionService) fetchOrdered(formID uint) ([]models.Question, error) {
	var rows []models.Question
	err := s.db.
		Where("form_id = ?", formID).
		Order("order_index asc").
		Order("parent_question_id asc NULLS FIRST").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("list questions", err)
	}
	return rows, nil
}

func (s *QuestionService) validateParent(formID, parentID uint, label *string) error {
	var parent models.Question
	if err := s.db.First(&parent, parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("parent_question_id", "parent question does not exist")
		}
		return storageErr("load parent question", err)
	}
	if parent.FormID != formID {
		return NewValidationError("parent_question_id", "parent question belongs to a different form")
	}
	if parent.ParentQuestionID != nil {
		return NewValidationError("parent_question_id", "sub-questions cannot be nested")
	}
	if label == nil || strings.TrimSpace(*label) == "" {
		return NewValidationError("sub_question_label", "sub-questions require a label")
	}
	return nil
}

func validateOptions(t models.QuestionType, extra *models.QuestionExtra) error {
	if !t.RequiresOptions() {
		return nil
	}
	if extra == nil || len(extra.Options) == 0 {
		return NewValidationError("extra.options", string(t)+" questions must have options")
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
