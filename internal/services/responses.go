package services

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gia-feedback/feedback-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResponseService validates and persists form submissions and reads them back
// for review and export.
type ResponseService struct {
	db      *gorm.DB
	storage *StorageService
	// StrictAnswers controls the policy for answer entries with a missing
	// question id: false skips them with a warning, true rejects the whole
	// submission.
	strictAnswers bool
	log           *zap.Logger
}

func NewResponseService(db *gorm.DB, storage *StorageService, strictAnswers bool, log *zap.Logger) *ResponseService {
	return &ResponseService{db: db, storage: storage, strictAnswers: strictAnswers, log: log}
}

type SubmitAnswer struct {
	QuestionID uint    `json:"question_id"`
	Value      any     `json:"value"`
	FilePath   *string `json:"file_path"`
}

type SubmitInput struct {
	VisitorID       *uint          `json:"visitorId"`
	SubmittedByUser *uint          `json:"submitted_by_user"`
	Answers         []SubmitAnswer `json:"answers"`
}

// Submit creates one response row plus one answer row per entry, all inside a
// single transaction so a failure mid-sequence cannot leave an orphaned
// partial response. Required-question enforcement stays with the submitting
// client; this layer does not re-check it.
func (s *ResponseService) Submit(formID uint, in SubmitInput) (uint, error) {
	if len(in.Answers) == 0 {
		return 0, NewValidationError("answers", "answers are required")
	}

	var form models.Form
	if err := s.db.First(&form, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NewNotFoundError("form", formID)
		}
		return 0, storageErr("load form", err)
	}

	if in.VisitorID != nil {
		var visitor models.Visitor
		if err := s.db.First(&visitor, *in.VisitorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, NewValidationError("visitorId", "invalid visitor ID")
			}
			return 0, storageErr("load visitor", err)
		}
	}

	var responseID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		response := models.Response{
			FormID:          formID,
			VisitorID:       in.VisitorID,
			SubmittedByUser: in.SubmittedByUser,
		}
		if err := tx.Create(&response).Error; err != nil {
			return storageErr("create response", err)
		}
		responseID = response.ID

		for _, a := range in.Answers {
			if a.QuestionID == 0 {
				if s.strictAnswers {
					return NewValidationError("answers", "answer entry is missing question_id")
				}
				s.log.Warn("skipping answer without question_id",
					zap.Uint("response_id", responseID))
				continue
			}
			value, err := normalizeValue(a.Value)
			if err != nil {
				return NewValidationError("answers", "answer value is not serializable")
			}
			answer := models.Answer{
				ResponseID: responseID,
				QuestionID: a.QuestionID,
				Value:      value,
				FilePath:   a.FilePath,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return storageErr("create answer", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return responseID, nil
}

// normalizeValue converts a decoded JSON value to its stored text form: nil
// stays NULL, strings pass through, arrays and objects become JSON text, and
// scalars take their plain string form. FormatAnswerValue reverses this.
func normalizeValue(v any) (*string, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &value, nil
	case bool:
		s := strconv.FormatBool(value)
		return &s, nil
	case float64:
		s := strconv.FormatFloat(value, 'f', -1, 64)
		return &s, nil
	case json.Number:
		s := value.String()
		return &s, nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		s := string(b)
		return &s, nil
	}
}

// ResponseSummary is one row of the per-form response listing.
type ResponseSummary struct {
	ID              uint      `json:"id"`
	FormID          uint      `json:"form_id"`
	VisitorID       *uint     `json:"visitor_id,omitempty"`
	SubmittedByUser *uint     `json:"submitted_by_user,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
	VisitorName     *string   `json:"visitor_name,omitempty"`
	VisitorType     *string   `json:"visitor_type,omitempty"`
}

func (s *ResponseService) ListByForm(formID uint) ([]ResponseSummary, error) {
	var rows []ResponseSummary
	err := s.db.
		Table("responses r").
		Select("r.id, r.form_id, r.visitor_id, r.submitted_by_user, r.submitted_at, v.name as visitor_name, v.type as visitor_type").
		Joins("LEFT JOIN visitors v ON r.visitor_id = v.id").
		Where("r.form_id = ?", formID).
		Order("r.submitted_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("list responses", err)
	}
	return rows, nil
}

// Get returns one response with its visitor, for export metadata.
func (s *ResponseService) Get(id uint) (*models.Response, error) {
	var response models.Response
	if err := s.db.Preload("Visitor").First(&response, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("response", id)
		}
		return nil, storageErr("load response", err)
	}
	return &response, nil
}

// Details returns the response's answers joined with question metadata in
// canonical question order. Sub-question rows carry the parent question's own
// text so the aggregator can label groups correctly.
func (s *ResponseService) Details(responseID uint) ([]AnswerRow, error) {
	var rows []AnswerRow
	err := s.db.
		Table("answers a").
		Select(`a.question_id, a.value, a.file_path,
			q.q_text, q.parent_question_id, q.sub_question_label,
			pq.q_text as parent_q_text`).
		Joins("LEFT JOIN questions q ON a.question_id = q.id").
		Joins("LEFT JOIN questions pq ON q.parent_question_id = pq.id").
		Where("a.response_id = ?", responseID).
		Order("q.order_index asc").
		Order("q.parent_question_id asc NULLS FIRST").
		Order("q.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("load response details", err)
	}
	return rows, nil
}

// Delete removes a response with its answers, then removes any attachments
// the answers referenced from object storage.
func (s *ResponseService) Delete(responseID uint) error {
	var filePaths []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("response_id = ? AND file_path IS NOT NULL", responseID).
			Pluck("file_path", &filePaths).Error; err != nil {
			return storageErr("list answer attachments", err)
		}
		if err := tx.Where("response_id = ?", responseID).Delete(&models.Answer{}).Error; err != nil {
			return storageErr("delete answers", err)
		}
		result := tx.Delete(&models.Response{}, responseID)
		if result.Error != nil {
			return storageErr("delete response", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError("response", responseID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	removeAttachments(s.storage, s.log, filePaths)
	return nil
}

// ExportFilter narrows the bulk export. Dates are inclusive calendar days in
// "2006-01-02" form.
type ExportFilter struct {
	FormID    *uint
	StartDate string
	EndDate   string
}

// ExportResponse is one response with the metadata and answers the Excel
// report renders.
type ExportResponse struct {
	ID           uint      `json:"id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	FormTitle    *string   `json:"form_title"`
	VisitorName  *string   `json:"visitor_name"`
	VisitorType  *string   `json:"visitor_type"`
	Organization *string   `json:"organization"`
	IDNumber     *string   `json:"id_number"`
	Purpose      *string   `json:"purpose"`

	Answers []AnswerRow `json:"answers" gorm:"-"`
}

func (s *ResponseService) ListForExport(filter ExportFilter) ([]ExportResponse, error) {
	query := s.db.
		Table("responses r").
		Select(`r.id, r.submitted_at, f.title as form_title,
			v.name as visitor_name, v.type as visitor_type,
			v.organization, v.id_number, v.purpose`).
		Joins("LEFT JOIN visitors v ON r.visitor_id = v.id").
		Joins("LEFT JOIN forms f ON r.form_id = f.id")

	if filter.FormID != nil {
		query = query.Where("r.form_id = ?", *filter.FormID)
	}
	if filter.StartDate != "" {
		query = query.Where("DATE(r.submitted_at) >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		query = query.Where("DATE(r.submitted_at) <= ?", filter.EndDate)
	}

	var responses []ExportResponse
	if err := query.Order("r.submitted_at desc").Scan(&responses).Error; err != nil {
		return nil, storageErr("list responses for export", err)
	}

	for i := range responses {
		answers, err := s.Details(responses[i].ID)
		if err != nil {
			return nil, err
		}
		responses[i].Answers = answers
	}
	return responses, nil
}
