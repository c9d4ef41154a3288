package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

func createQuizWithQuestions(t *testing.T, repo *QuizRepo, title string, categories []entity.Category) *entity.Quiz {
	t.Helper()
	quiz := &entity.Quiz{
		Title:       title,
		TimeLimit:   10,
		CreatedByID: 2,
		Categories:  categories,
		Questions: []entity.Question{
			{Text: "2+2?", Type: entity.QuestionTypeMultipleChoice, Points: 3, Answers: []entity.Answer{
				{Text: "4", IsCorrect: true},
				{Text: "5"},
			}},
			{Text: "Go is compiled", Type: entity.QuestionTypeTrueFalse, Points: 1, Answers: []entity.Answer{
				{Text: "true", IsCorrect: true},
				{Text: "false"},
			}},
		},
	}
	require.NoError(t, repo.Create(context.Background(), quiz))
	return quiz
}

func countRows(t *testing.T, db *gorm.DB, table, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Where(where, args...).Count(&n).Error)
	return n
}

func TestQuizRepo_Delete_RemovesDescendants(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	quizRepo := NewQuizRepo(db)
	questionRepo := NewQuestionRepo(db)
	answerRepo := NewAnswerRepo(db)
	participantRepo := NewParticipantRepo(db)
	feedbackRepo := NewFeedbackRepo(db)
	categoryRepo := NewCategoryRepo(db)

	category := &entity.Category{Name: "Math"}
	require.NoError(t, categoryRepo.Create(ctx, category))

	quiz := createQuizWithQuestions(t, quizRepo, "Arithmetic", []entity.Category{{ID: category.ID}})
	other := createQuizWithQuestions(t, quizRepo, "Other", nil)

	participant, err := participantRepo.UpsertAttempt(ctx, 7, quiz.ID, testEpoch, testEpoch.Add(10*time.Minute))
	require.NoError(t, err)
	feedback := &entity.Feedback{ParticipantID: participant.ID, QuizID: quiz.ID, Rating: 5, Comment: "nice"}
	require.NoError(t, feedbackRepo.Create(ctx, feedback))
	_, err = participantRepo.UpsertAttempt(ctx, 7, other.ID, testEpoch, testEpoch.Add(10*time.Minute))
	require.NoError(t, err)

	require.Equal(t, int64(1), countRows(t, db, "quiz_categories", "quiz_id = ?", quiz.ID))

	// Act
	require.NoError(t, quizRepo.Delete(ctx, quiz.ID))

	// Assert: каждый потомок удаленной викторины больше не находится
	_, err = quizRepo.GetByID(ctx, quiz.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "quiz")
	for _, q := range quiz.Questions {
		_, err = questionRepo.GetByID(ctx, q.ID)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound), "question #%d", q.ID)
		for _, a := range q.Answers {
			_, err = answerRepo.GetByID(ctx, a.ID)
			assert.True(t, errors.Is(err, apperrors.ErrNotFound), "answer #%d", a.ID)
		}
	}
	_, err = participantRepo.GetByUserAndQuiz(ctx, 7, quiz.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "participant")
	_, err = feedbackRepo.GetByID(ctx, feedback.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "feedback")
	assert.Zero(t, countRows(t, db, "quiz_categories", "quiz_id = ?", quiz.ID))

	// Категория и другая викторина не затронуты
	_, err = categoryRepo.GetByID(ctx, category.ID)
	assert.NoError(t, err)
	kept, err := quizRepo.GetWithQuestions(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, kept.Questions, 2)
	assert.Len(t, kept.Questions[0].Answers, 2)
	_, err = participantRepo.GetByUserAndQuiz(ctx, 7, other.ID)
	assert.NoError(t, err)
}

func TestQuizRepo_Delete_Unknown(t *testing.T) {
	repo := NewQuizRepo(newTestDB(t))

	err := repo.Delete(context.Background(), 404)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestQuizRepo_CreateAndLoadWithQuestions(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuizRepo(db)

	quiz := createQuizWithQuestions(t, repo, "Arithmetic", nil)

	got, err := repo.GetWithQuestions(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arithmetic", got.Title)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, entity.QuestionTypeMultipleChoice, got.Questions[0].Type)
	assert.Equal(t, 3, got.Questions[0].Points)
	require.Len(t, got.Questions[0].Answers, 2)
	assert.True(t, got.Questions[0].Answers[0].IsCorrect)
	assert.False(t, got.Questions[0].Answers[1].IsCorrect)
}
