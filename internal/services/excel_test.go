package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExcelRender(t *testing.T) {
	renderer := NewExcelRenderer(zap.NewNop())

	submitted := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	responses := []ExportResponse{
		{
			ID:          7,
			SubmittedAt: submitted,
			FormTitle:   strPtr("Visitor Feedback"),
			VisitorName: strPtr("Alice"),
			VisitorType: strPtr("guest"),
			Answers: []AnswerRow{
				{QuestionID: 1, Value: strPtr("great service"), QText: "How was the service?"},
				{QuestionID: 3, Value: strPtr("4"), QText: "Food rating",
					ParentQuestionID: uintPtr(2), SubQuestionLabel: strPtr("Food"),
					ParentQText: "Rate our facilities"},
				{QuestionID: 4, Value: nil, QText: "Cleanliness rating",
					ParentQuestionID: uintPtr(2), SubQuestionLabel: strPtr("Cleanliness"),
					ParentQText: "Rate our facilities"},
			},
		},
	}

	data, err := renderer.Render(responses)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(excelSheetName, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "RESPONSE #7 - Alice", get("A1"))
	assert.Equal(t, "Visitor Name:", get("A2"))
	assert.Equal(t, "Alice", get("B2"))
	assert.Equal(t, "Guest Visitor", get("B3"))
	assert.Equal(t, "Visitor Feedback", get("B4"))
	assert.Equal(t, "N/A", get("B5"))
	assert.Equal(t, submitted.Format(time.RFC1123), get("B7"))

	assert.Equal(t, "#", get("A9"))
	assert.Equal(t, "Question", get("B9"))
	assert.Equal(t, "Answer", get("C9"))

	assert.Equal(t, "1", get("A10"))
	assert.Equal(t, "How was the service?", get("B10"))
	assert.Equal(t, "great service", get("C10"))

	assert.Equal(t, "2", get("A11"))
	assert.Equal(t, "Rate our facilities", get("B11"))
	assert.Equal(t, "Food", get("B12"))
	assert.Equal(t, "4", get("C12"))
	assert.Equal(t, "Cleanliness", get("B13"))
	assert.Equal(t, NoAnswerText, get("C13"))
}

func TestExcelRenderNoAnswers(t *testing.T) {
	renderer := NewExcelRenderer(zap.NewNop())

	data, err := renderer.Render([]ExportResponse{
		{ID: 1, SubmittedAt: time.Now(), VisitorName: nil},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(excelSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "RESPONSE #1 - Unknown Visitor", header)

	empty, err := f.GetCellValue(excelSheetName, "A10")
	require.NoError(t, err)
	assert.Equal(t, "No answers provided", empty)
}
