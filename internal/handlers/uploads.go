package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gia-feedback/feedback-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize caps answer attachments at 5MB.
const MaxUploadSize = 5 << 20

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// UploadFile stores an answer attachment and returns the opaque file_path the
// submission should reference.
func UploadFile(storage *services.StorageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storage == nil {
			c.JSON(http.StatusServiceUnavailable, errorBody("STORAGE_UNAVAILABLE", "File storage is not available"))
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "file is required"))
			return
		}
		defer file.Close()

		if header.Size > MaxUploadSize {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "File size too large. Maximum size is 5MB"))
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if !allowedUploadTypes[mimeType] {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Unsupported file type. Allowed: images, PDF, Word, Excel"))
			return
		}

		name := uuid.New().String() + filepath.Ext(header.Filename)
		if err := storage.Upload(c.Request.Context(), name, file, header.Size, mimeType); err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Failed to store file"))
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"file_path": name}})
	}
}

// DownloadFile streams a stored attachment back to an authenticated reviewer.
func DownloadFile(storage *services.StorageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storage == nil {
			c.JSON(http.StatusServiceUnavailable, errorBody("STORAGE_UNAVAILABLE", "File storage is not available"))
			return
		}

		name := c.Param("name")
		object, err := storage.Download(c.Request.Context(), name)
		if err != nil {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "File not found"))
			return
		}
		defer object.Close()

		info, err := object.Stat()
		if err != nil {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "File not found"))
			return
		}

		c.DataFromReader(http.StatusOK, info.Size, info.ContentType, object, map[string]string{
			"Content-Disposition": `attachment; filename="` + name + `"`,
		})
	}
}
