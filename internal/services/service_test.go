package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gia-feedback/feedback-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&models.User{},
		&models.Visitor{},
		&models.Form{},
		&models.Question{},
		&models.Response{},
		&models.Answer{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestServices(t *testing.T) (*gorm.DB, *QuestionService, *FormService, *ResponseService) {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	questions := NewQuestionService(db, log)
	forms := NewFormService(db, questions, nil, log)
	responses := NewResponseService(db, nil, false, log)
	return db, questions, forms, responses
}

func createTestForm(t *testing.T, db *gorm.DB, title string, audience models.FormAudience) *models.Form {
	t.Helper()
	form := models.Form{Title: title, VisitorType: audience}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("create test form: %v", err)
	}
	return &form
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
