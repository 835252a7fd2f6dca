package handlers

import (
	"net/http"

	"github.com/gia-feedback/feedback-api/internal/models"
	"github.com/gia-feedback/feedback-api/internal/services"
	"github.com/gin-gonic/gin"
)

func CreateForm(forms *services.FormService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.CreateFormInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		id, err := forms.Create(req, currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"formId": id}})
	}
}

func ListForms(forms *services.FormService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := forms.List()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
	}
}

// GetForm returns a form together with its question tree.
func GetForm(forms *services.FormService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		form, err := forms.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": form})
	}
}

func UpdateForm(forms *services.FormService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req services.UpdateFormInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		if err := forms.Update(id, req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func DeleteForm(forms *services.FormService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		if err := forms.Delete(id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// SetActiveGuest makes the form the single active guest form.
func SetActiveGuest(forms *services.FormService) gin.HandlerFunc {
	return setActive(forms, models.VisitorGuest)
}

// SetActiveInternal makes the form the single active internal form.
func SetActiveInternal(forms *services.FormService) gin.HandlerFunc {
	return setActive(forms, models.VisitorInternal)
}

func setActive(forms *services.FormService, visitorType models.VisitorType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		if err := forms.SetActive(id, visitorType); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// GetActiveForm returns the active form for a visitor type. No form active is
// a normal condition reported as 404 with a distinct code so kiosks can show
// a "no form available" screen.
func GetActiveForm(forms *services.FormService) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorType := models.VisitorType(c.Param("visitorType"))

		form, err := forms.GetActive(visitorType)
		if err != nil {
			respondError(c, err)
			return
		}
		if form == nil {
			c.JSON(http.StatusNotFound, errorBody("NO_ACTIVE_FORM", "No form currently available for this visitor type"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": form})
	}
}
