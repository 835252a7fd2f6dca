package database

import (
	"os"

	"github.com/gia-feedback/feedback-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates a default admin account if no admin exists yet.
// Credentials come from ADMIN_USERNAME / ADMIN_PASSWORD, with development
// defaults.
func SeedAdmin(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin user already exists, skipping seed")
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	displayName := "System Administrator"
	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  &displayName,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("created default admin user", zap.String("username", username))
	return nil
}
