package handlers

import (
	"net/http"

	"github.com/gia-feedback/feedback-api/internal/services"
	"github.com/gin-gonic/gin"
)

func AddQuestion(questions *services.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		formID, ok := parseIDParam(c, "formId")
		if !ok {
			return
		}

		var req services.CreateQuestionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		id, err := questions.Create(formID, req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"questionId": id}})
	}
}

func UpdateQuestion(questions *services.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req services.UpdateQuestionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		if err := questions.Update(id, req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DeleteQuestion removes a question and its sub-questions.
func DeleteQuestion(questions *services.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		if err := questions.Delete(id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// GetQuestion returns one question with its direct sub-questions.
func GetQuestion(questions *services.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		question, err := questions.GetByID(id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": question})
	}
}
