package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gia-feedback/feedback-api/internal/services"
	"github.com/gin-gonic/gin"
)

func errorBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// respondError maps domain errors to HTTP statuses. Storage and render
// failures reach the client only as generic messages; detail stays in the
// server logs.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var nf *services.NotFoundError
	var re *services.RenderError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", ve.Error()))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", nf.Error()))
	case errors.As(err, &re):
		c.JSON(http.StatusInternalServerError, errorBody("RENDER_ERROR", re.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Internal server error"))
	}
}

// parseIDParam reads a numeric path parameter, responding 400 on garbage.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ID", "Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the authenticated user's id when present.
func currentUserID(c *gin.Context) *uint {
	value, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := value.(uint)
	if !ok {
		return nil
	}
	return &id
}
