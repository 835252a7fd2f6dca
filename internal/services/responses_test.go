package services

import (
	"testing"

	"github.com/gia-feedback/feedback-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmitBasic(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	qID, err := questions.Create(form.ID, CreateQuestionInput{
		QText: "How was the service?", QType: models.TypeShort, Required: true,
	})
	require.NoError(t, err)

	responseID, err := responses.Submit(form.ID, SubmitInput{
		Answers: []SubmitAnswer{{QuestionID: qID, Value: "great service"}},
	})
	require.NoError(t, err)
	assert.NotZero(t, responseID)

	var answers []models.Answer
	require.NoError(t, db.Where("response_id = ?", responseID).Find(&answers).Error)
	require.Len(t, answers, 1)
	assert.Equal(t, "great service", *answers[0].Value)
}

func TestSubmitEmptyAnswers(t *testing.T) {
	db, _, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	_, err := responses.Submit(form.ID, SubmitInput{})
	assert.True(t, IsValidation(err))
}

func TestSubmitUnknownForm(t *testing.T) {
	_, _, _, responses := newTestServices(t)

	_, err := responses.Submit(999, SubmitInput{
		Answers: []SubmitAnswer{{QuestionID: 1, Value: "x"}},
	})
	assert.True(t, IsNotFound(err))
}

func TestSubmitUnknownVisitor(t *testing.T) {
	db, _, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	_, err := responses.Submit(form.ID, SubmitInput{
		VisitorID: uintPtr(777),
		Answers:   []SubmitAnswer{{QuestionID: 1, Value: "x"}},
	})
	assert.True(t, IsValidation(err))
}

func TestSubmitWithVisitor(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)
	visitor := models.Visitor{Type: models.VisitorGuest, Name: "Alice"}
	require.NoError(t, db.Create(&visitor).Error)

	qID, err := questions.Create(form.ID, CreateQuestionInput{
		QText: "Comments?", QType: models.TypeParagraph,
	})
	require.NoError(t, err)

	responseID, err := responses.Submit(form.ID, SubmitInput{
		VisitorID: &visitor.ID,
		Answers:   []SubmitAnswer{{QuestionID: qID, Value: nil}},
	})
	require.NoError(t, err)

	got, err := responses.Get(responseID)
	require.NoError(t, err)
	require.NotNil(t, got.Visitor)
	assert.Equal(t, "Alice", got.Visitor.Name)

	// Explicitly skipped questions are stored as NULL.
	var answers []models.Answer
	require.NoError(t, db.Where("response_id = ?", responseID).Find(&answers).Error)
	require.Len(t, answers, 1)
	assert.Nil(t, answers[0].Value)
}

func TestSubmitSkipsEntryWithoutQuestionID(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	q1, err := questions.Create(form.ID, CreateQuestionInput{QText: "One", QType: models.TypeShort})
	require.NoError(t, err)
	q2, err := questions.Create(form.ID, CreateQuestionInput{QText: "Two", QType: models.TypeShort})
	require.NoError(t, err)

	responseID, err := responses.Submit(form.ID, SubmitInput{
		Answers: []SubmitAnswer{
			{QuestionID: q1, Value: "a"},
			{Value: "no question id"},
			{QuestionID: q2, Value: "b"},
		},
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Answer{}).Where("response_id = ?", responseID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestSubmitStrictModeRejects(t *testing.T) {
	db := newTestDB(t)
	log := zap.NewNop()
	questions := NewQuestionService(db, log)
	responses := NewResponseService(db, nil, true, log)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	qID, err := questions.Create(form.ID, CreateQuestionInput{QText: "One", QType: models.TypeShort})
	require.NoError(t, err)

	_, err = responses.Submit(form.ID, SubmitInput{
		Answers: []SubmitAnswer{
			{QuestionID: qID, Value: "a"},
			{Value: "no question id"},
		},
	})
	assert.True(t, IsValidation(err))

	// The transaction must have rolled everything back.
	var responseCount, answerCount int64
	require.NoError(t, db.Model(&models.Response{}).Count(&responseCount).Error)
	require.NoError(t, db.Model(&models.Answer{}).Count(&answerCount).Error)
	assert.Zero(t, responseCount)
	assert.Zero(t, answerCount)
}

func TestSubmitNormalizesArrayValue(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	qID, err := questions.Create(form.ID, CreateQuestionInput{
		QText: "Pick all", QType: models.TypeCheckbox,
		Extra: &models.QuestionExtra{Options: []string{"a", "b", "c"}},
	})
	require.NoError(t, err)

	responseID, err := responses.Submit(form.ID, SubmitInput{
		Answers: []SubmitAnswer{{QuestionID: qID, Value: []any{"a", "c"}}},
	})
	require.NoError(t, err)

	var answer models.Answer
	require.NoError(t, db.Where("response_id = ?", responseID).First(&answer).Error)
	assert.Equal(t, `["a","c"]`, *answer.Value)
	assert.Equal(t, "a, c", FormatAnswerValue(answer.Value))
}

func TestDetailsCarriesParentText(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	parentID, err := questions.Create(form.ID, CreateQuestionInput{
		QText: "Rate our service", QType: models.TypeRating, OrderIndex: 1,
	})
	require.NoError(t, err)
	foodID, err := questions.Create(form.ID, CreateQuestionInput{
		QText: "Food rating", QType: models.TypeRating, OrderIndex: 1,
		ParentQuestionID: &parentID, SubQuestionLabel: strPtr("Food"),
	})
	require.NoError(t, err)
	cleanID, err := questions.Create(form.ID, CreateQuestionInput{
		QText: "Cleanliness rating", QType: models.TypeRating, OrderIndex: 1,
		ParentQuestionID: &parentID, SubQuestionLabel: strPtr("Cleanliness"),
	})
	require.NoError(t, err)

	responseID, err := responses.Submit(form.ID, SubmitInput{
		Answers: []SubmitAnswer{
			{QuestionID: foodID, Value: float64(4)},
			{QuestionID: cleanID, Value: float64(5)},
		},
	})
	require.NoError(t, err)

	rows, err := responses.Details(responseID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "Rate our service", row.ParentQText,
			"sub-answer rows must carry the parent question's own text")
	}

	groups := Aggregate(rows)
	require.Len(t, groups, 1)
	assert.Equal(t, parentID, groups[0].QuestionID)
	assert.Equal(t, "Rate our service", groups[0].QText)
	require.Len(t, groups[0].SubAnswers, 2)
	assert.Equal(t, "Food", groups[0].SubAnswers[0].SubQuestionLabel)
	assert.Equal(t, "4", *groups[0].SubAnswers[0].Value)
	assert.Equal(t, "Cleanliness", groups[0].SubAnswers[1].SubQuestionLabel)
	assert.Equal(t, "5", *groups[0].SubAnswers[1].Value)
}

func TestListByFormIncludesVisitor(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)
	visitor := models.Visitor{Type: models.VisitorGuest, Name: "Bob"}
	require.NoError(t, db.Create(&visitor).Error)

	qID, err := questions.Create(form.ID, CreateQuestionInput{QText: "Q", QType: models.TypeShort})
	require.NoError(t, err)

	_, err = responses.Submit(form.ID, SubmitInput{
		VisitorID: &visitor.ID,
		Answers:   []SubmitAnswer{{QuestionID: qID, Value: "x"}},
	})
	require.NoError(t, err)

	list, err := responses.ListByForm(form.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", *list[0].VisitorName)
	assert.Equal(t, "guest", *list[0].VisitorType)
}

func TestDeleteResponse(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	form := createTestForm(t, db, "Feedback", models.AudienceBoth)

	qID, err := questions.Create(form.ID, CreateQuestionInput{QText: "Q", QType: models.TypeShort})
	require.NoError(t, err)

	// One answer carries an attachment so deletion also walks the
	// storage cleanup path.
	responseID, err := responses.Submit(form.ID, SubmitInput{
		Answers: []SubmitAnswer{{QuestionID: qID, Value: "x", FilePath: strPtr("deadbeef.pdf")}},
	})
	require.NoError(t, err)

	require.NoError(t, responses.Delete(responseID))

	var answerCount int64
	require.NoError(t, db.Model(&models.Answer{}).Where("response_id = ?", responseID).Count(&answerCount).Error)
	assert.Zero(t, answerCount)

	assert.True(t, IsNotFound(responses.Delete(responseID)))
}

func TestListForExport(t *testing.T) {
	db, questions, _, responses := newTestServices(t)
	formA := createTestForm(t, db, "Form A", models.AudienceBoth)
	formB := createTestForm(t, db, "Form B", models.AudienceBoth)
	visitor := models.Visitor{Type: models.VisitorInternal, Name: "Carol", IDNumber: strPtr("EMP-7")}
	require.NoError(t, db.Create(&visitor).Error)

	qA, err := questions.Create(formA.ID, CreateQuestionInput{QText: "QA", QType: models.TypeShort})
	require.NoError(t, err)
	qB, err := questions.Create(formB.ID, CreateQuestionInput{QText: "QB", QType: models.TypeShort})
	require.NoError(t, err)

	_, err = responses.Submit(formA.ID, SubmitInput{
		VisitorID: &visitor.ID,
		Answers:   []SubmitAnswer{{QuestionID: qA, Value: "from A"}},
	})
	require.NoError(t, err)
	_, err = responses.Submit(formB.ID, SubmitInput{
		Answers: []SubmitAnswer{{QuestionID: qB, Value: "from B"}},
	})
	require.NoError(t, err)

	all, err := responses.ListForExport(ExportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := responses.ListForExport(ExportFilter{FormID: &formA.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Form A", *filtered[0].FormTitle)
	assert.Equal(t, "Carol", *filtered[0].VisitorName)
	assert.Equal(t, "EMP-7", *filtered[0].IDNumber)
	require.Len(t, filtered[0].Answers, 1)
	assert.Equal(t, "from A", *filtered[0].Answers[0].Value)

	none, err := responses.ListForExport(ExportFilter{EndDate: "2000-01-01"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
