package services

import (
	"testing"
	"time"

	"github.com/gia-feedback/feedback-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderHTMLEscapesUserText(t *testing.T) {
	renderer := NewPDFRenderer(zap.NewNop())

	response := &models.Response{ID: 3, SubmittedAt: time.Now()}
	groups := []AnswerGroup{
		{QuestionID: 1, QText: "<script>alert(1)</script>", Value: strPtr("<b>bold</b>")},
	}

	html, err := renderer.RenderHTML(response, groups)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, html, "&lt;b&gt;bold&lt;/b&gt;")
}

func TestRenderHTMLLayout(t *testing.T) {
	renderer := NewPDFRenderer(zap.NewNop())

	response := &models.Response{
		ID:          12,
		SubmittedAt: time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		Visitor:     &models.Visitor{Name: "Alice"},
	}
	groups := []AnswerGroup{
		{QuestionID: 1, QText: "How was the service?", Value: strPtr("great service"),
			FilePath: strPtr("uploads/receipt.pdf")},
		{QuestionID: 2, QText: "Rate our facilities", SubAnswers: []SubAnswer{
			{QuestionID: 3, SubQuestionLabel: "Food", Value: strPtr("4")},
			{QuestionID: 4, SubQuestionLabel: "Cleanliness", Value: nil},
		}},
		{QuestionID: 5, QText: "Anything else?", Value: nil},
	}

	html, err := renderer.RenderHTML(response, groups)
	require.NoError(t, err)

	assert.Contains(t, html, "Form Response #12")
	assert.Contains(t, html, "by Alice")
	assert.Contains(t, html, "1. How was the service?")
	assert.Contains(t, html, "great service")
	assert.Contains(t, html, "File: uploads/receipt.pdf")
	assert.Contains(t, html, "2. Rate our facilities")
	assert.Contains(t, html, "Food")
	assert.Contains(t, html, "Cleanliness")
	assert.Contains(t, html, "3. Anything else?")
	assert.Contains(t, html, NoAnswerText)
}

func TestRenderHTMLNoVisitor(t *testing.T) {
	renderer := NewPDFRenderer(zap.NewNop())

	response := &models.Response{ID: 1, SubmittedAt: time.Now()}
	html, err := renderer.RenderHTML(response, nil)
	require.NoError(t, err)
	assert.NotContains(t, html, " by ")
}
