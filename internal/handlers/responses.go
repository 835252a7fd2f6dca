package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gia-feedback/feedback-api/internal/services"
	"github.com/gin-gonic/gin"
)

func SubmitResponse(responses *services.ResponseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		formID, ok := parseIDParam(c, "formId")
		if !ok {
			return
		}

		var req services.SubmitInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}

		id, err := responses.Submit(formID, req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"responseId": id}})
	}
}

func ListResponses(responses *services.ResponseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		formID, ok := parseIDParam(c, "formId")
		if !ok {
			return
		}

		list, err := responses.ListByForm(formID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
	}
}

// GetResponseDetails returns the answers of one response with question
// metadata, grouped into parent/sub-answer structures.
func GetResponseDetails(responses *services.ResponseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		responseID, ok := parseIDParam(c, "responseId")
		if !ok {
			return
		}

		rows, err := responses.Details(responseID)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(rows) == 0 {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "Response not found"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"answers": rows,
				"groups":  services.Aggregate(rows),
			},
		})
	}
}

func DeleteResponse(responses *services.ResponseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		responseID, ok := parseIDParam(c, "responseId")
		if !ok {
			return
		}

		if err := responses.Delete(responseID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DownloadResponsePDF streams a single response as a PDF document.
func DownloadResponsePDF(responses *services.ResponseService, pdf *services.PDFRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		responseID, ok := parseIDParam(c, "responseId")
		if !ok {
			return
		}

		response, err := responses.Get(responseID)
		if err != nil {
			respondError(c, err)
			return
		}

		rows, err := responses.Details(responseID)
		if err != nil {
			respondError(c, err)
			return
		}

		document, err := pdf.Render(response, services.Aggregate(rows))
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="response_%d.pdf"`, responseID))
		c.Data(http.StatusOK, "application/pdf", document)
	}
}

// DownloadAllResponses exports every response matching the filter as one
// Excel workbook.
func DownloadAllResponses(responses *services.ResponseService, excel *services.ExcelRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.ExportFilter{
			StartDate: c.Query("startDate"),
			EndDate:   c.Query("endDate"),
		}
		if raw := c.Query("formId"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, errorBody("INVALID_ID", "Invalid formId"))
				return
			}
			formID := uint(id)
			filter.FormID = &formID
		}

		list, err := responses.ListForExport(filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(list) == 0 {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "No responses found for the selected criteria"))
			return
		}

		workbook, err := excel.Render(list)
		if err != nil {
			respondError(c, err)
			return
		}

		filename := fmt.Sprintf("Feedback_Report_%d.xlsx", time.Now().Unix())
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%s`, filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
	}
}
