package services

import (
	"errors"
	"strings"

	"github.com/gia-feedback/feedback-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FormService manages form definitions and the active-form registry.
type FormService struct {
	db        *gorm.DB
	questions *QuestionService
	storage   *StorageService
	log       *zap.Logger
}

func NewFormService(db *gorm.DB, questions *QuestionService, storage *StorageService, log *zap.Logger) *FormService {
	return &FormService{db: db, questions: questions, storage: storage, log: log}
}

type CreateFormInput struct {
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	VisitorType models.FormAudience `json:"visitor_type"`
}

type UpdateFormInput struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	VisitorType *models.FormAudience `json:"visitor_type"`
}

func validAudience(a models.FormAudience) bool {
	return a == models.AudienceGuest || a == models.AudienceInternal || a == models.AudienceBoth
}

func (s *FormService) Create(in CreateFormInput, createdBy *uint) (uint, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return 0, NewValidationError("title", "title is required")
	}
	if len(in.Title) > 255 {
		return 0, NewValidationError("title", "title must be less than 255 characters")
	}
	if in.VisitorType == "" {
		in.VisitorType = models.AudienceBoth
	}
	if !validAudience(in.VisitorType) {
		return 0, NewValidationError("visitor_type", "invalid visitor type")
	}

	form := models.Form{
		Title:       in.Title,
		Description: trimPtr(in.Description),
		VisitorType: in.VisitorType,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&form).Error; err != nil {
		return 0, storageErr("create form", err)
	}
	return form.ID, nil
}

func (s *FormService) List() ([]models.Form, error) {
	var forms []models.Form
	if err := s.db.Order("created_at desc").Find(&forms).Error; err != nil {
		return nil, storageErr("list forms", err)
	}
	return forms, nil
}

// Get returns the form with its question tree attached.
func (s *FormService) Get(id uint) (*models.Form, error) {
	var form models.Form
	if err := s.db.First(&form, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("form", id)
		}
		return nil, storageErr("load form", err)
	}
	questions, err := s.questions.ListByForm(id)
	if err != nil {
		return nil, err
	}
	form.Questions = questions
	return &form, nil
}

func (s *FormService) Update(id uint, in UpdateFormInput) error {
	var form models.Form
	if err := s.db.First(&form, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("form", id)
		}
		return storageErr("load form", err)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return NewValidationError("title", "title cannot be empty")
		}
		if len(title) > 255 {
			return NewValidationError("title", "title must be less than 255 characters")
		}
		form.Title = title
	}
	if in.Description != nil {
		form.Description = trimPtr(in.Description)
	}
	if in.VisitorType != nil {
		if !validAudience(*in.VisitorType) {
			return NewValidationError("visitor_type", "invalid visitor type")
		}
		form.VisitorType = *in.VisitorType
	}

	if err := s.db.Save(&form).Error; err != nil {
		return storageErr("update form", err)
	}
	return nil
}

// Delete removes a form together with its questions and responses, then
// removes any answer attachments from object storage.
func (s *FormService) Delete(id uint) error {
	var filePaths []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Form{}, id)
		if result.Error != nil {
			return storageErr("delete form", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError("form", id)
		}
		var responseIDs []uint
		if err := tx.Model(&models.Response{}).Where("form_id = ?", id).Pluck("id", &responseIDs).Error; err != nil {
			return storageErr("list form responses", err)
		}
		if len(responseIDs) > 0 {
			if err := tx.Model(&models.Answer{}).
				Where("response_id IN ? AND file_path IS NOT NULL", responseIDs).
				Pluck("file_path", &filePaths).Error; err != nil {
				return storageErr("list answer attachments", err)
			}
			if err := tx.Where("response_id IN ?", responseIDs).Delete(&models.Answer{}).Error; err != nil {
				return storageErr("delete form answers", err)
			}
			if err := tx.Where("form_id = ?", id).Delete(&models.Response{}).Error; err != nil {
				return storageErr("delete form responses", err)
			}
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return storageErr("delete form questions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	removeAttachments(s.storage, s.log, filePaths)
	return nil
}

// SetActive makes the form the single active one for the visitor type. The
// form's audience must allow the visitor type; the flag swap then runs as one
// transaction clearing every form's flag before setting the target's, so a
// failure mid-way leaves the previous active form in place.
func (s *FormService) SetActive(id uint, visitorType models.VisitorType) error {
	if visitorType != models.VisitorGuest && visitorType != models.VisitorInternal {
		return NewValidationError("visitor_type", "invalid visitor type")
	}

	var form models.Form
	if err := s.db.First(&form, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("form", id)
		}
		return storageErr("load form", err)
	}
	if !form.VisitorType.AllowsVisitorType(visitorType) {
		return NewValidationError("visitor_type",
			"form audience "+string(form.VisitorType)+" does not allow "+string(visitorType)+" activation")
	}

	column := activeColumn(visitorType)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Form{}).Where(column+" = ?", true).Update(column, false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Form{}).Where("id = ?", id).Update(column, true).Error
	})
	if err != nil {
		return storageErr("activate form", err)
	}

	s.log.Info("active form changed",
		zap.Uint("form_id", id),
		zap.String("visitor_type", string(visitorType)))
	return nil
}

// GetActive returns the active form for the visitor type with its question
// tree, or nil when no form is currently active. A nil result is not an error:
// it means no form is available for that visitor type yet.
func (s *FormService) GetActive(visitorType models.VisitorType) (*models.Form, error) {
	if visitorType != models.VisitorGuest && visitorType != models.VisitorInternal {
		return nil, NewValidationError("visitor_type", "invalid visitor type")
	}

	var form models.Form
	err := s.db.Where(activeColumn(visitorType)+" = ?", true).First(&form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("load active form", err)
	}
	questions, err := s.questions.ListByForm(form.ID)
	if err != nil {
		return nil, err
	}
	form.Questions = questions
	return &form, nil
}

func activeColumn(visitorType models.VisitorType) string {
	if visitorType == models.VisitorInternal {
		return "is_active_internal"
	}
	return "is_active_guest"
}
