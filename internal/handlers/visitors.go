package handlers

import (
	"net/http"
	"strings"

	"github.com/gia-feedback/feedback-api/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GuestLoginRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Organization *string `json:"organization" binding:"omitempty,max=100"`
	Purpose      *string `json:"purpose" binding:"omitempty,max=255"`
}

type InternalLoginRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	IDNumber string `json:"id_number" binding:"required,max=50"`
}

// GuestLogin registers a guest visitor session. Visitors are created once and
// never mutated afterwards.
func GuestLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GuestLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "name is required"))
			return
		}

		visitor := models.Visitor{
			Type:         models.VisitorGuest,
			Name:         name,
			Organization: trimOptional(req.Organization),
			Purpose:      trimOptional(req.Purpose),
		}
		if err := db.Create(&visitor).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Failed to create visitor"))
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"visitorId": visitor.ID}})
	}
}

func InternalLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InternalLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		name := strings.TrimSpace(req.Name)
		idNumber := strings.TrimSpace(req.IDNumber)
		if name == "" || idNumber == "" {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "name and id_number are required"))
			return
		}

		visitor := models.Visitor{
			Type:     models.VisitorInternal,
			Name:     name,
			IDNumber: &idNumber,
		}
		if err := db.Create(&visitor).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Failed to create visitor"))
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"visitorId": visitor.ID}})
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
