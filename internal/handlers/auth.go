package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gia-feedback/feedback-api/internal/config"
	"github.com/gia-feedback/feedback-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50"`
	Password    string  `json:"password" binding:"required,min=6,max=100"`
	DisplayName *string `json:"display_name"`
	Role        string  `json:"role"`
}

func generateToken(user *models.User, secret, expiry string) (string, error) {
	duration, err := time.ParseDuration(expiry)
	if err != nil {
		duration = 8 * time.Hour
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Login(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		var user models.User
		if err := db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Invalid credentials"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Invalid credentials"))
			return
		}

		token, err := generateToken(&user, cfg.JWTSecret, cfg.JWTExpiry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Failed to generate token"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"token": token,
				"user":  user,
			},
		})
	}
}

// Register creates a user account. The route is restricted to admins.
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		username := strings.TrimSpace(req.Username)

		var existing models.User
		if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, errorBody("CONFLICT", "Username already exists"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Failed to hash password"))
			return
		}

		role := models.RoleUser
		if req.Role == string(models.RoleAdmin) {
			role = models.RoleAdmin
		}

		user := models.User{
			Username:     username,
			PasswordHash: string(hash),
			DisplayName:  req.DisplayName,
			Role:         role,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Failed to create user"))
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
	}
}

func GetCurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Not authenticated"))
			return
		}

		var user models.User
		if err := db.First(&user, *userID).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "User not found"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
	}
}
