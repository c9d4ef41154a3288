package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

func createTestQuizServiceWithMocks(
	quizRepo *MockQuizRepository,
	categoryRepo *MockCategoryRepository,
	tagRepo *MockTagRepository,
	cacheRepo repository.CacheRepository,
) *QuizService {
	return NewQuizService(quizRepo, categoryRepo, tagRepo, cacheRepo, time.Minute)
}

func TestQuizService_CreateQuiz_Success(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepository)
	categoryRepo := new(MockCategoryRepository)
	tagRepo := new(MockTagRepository)

	categoryRepo.On("GetByIDs", mock.Anything, []uint{2}).Return([]entity.Category{{ID: 2, Name: "Science"}}, nil)
	tagRepo.On("GetByIDs", mock.Anything, mock.Anything).Return([]entity.Tag{}, nil)
	quizRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Quiz")).Return(nil)

	svc := createTestQuizServiceWithMocks(quizRepo, categoryRepo, tagRepo, nil)

	// Act
	quiz, err := svc.CreateQuiz(context.Background(), 42, CreateQuizInput{
		Title:       "Физика",
		TimeLimit:   15,
		CategoryIDs: []uint{2, 2},
		Questions: []QuestionInput{
			{Text: "Q1", Type: entity.QuestionTypeTrueFalse, Answers: []AnswerInput{{Text: "Да", IsCorrect: true}, {Text: "Нет"}}},
			{Text: "Q2", Type: entity.QuestionTypeMultipleChoice, Points: 4},
		},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), quiz.CreatedByID)
	assert.Len(t, quiz.Categories, 1)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, entity.DefaultQuestionPoints, quiz.Questions[0].Points, "по умолчанию вопрос стоит 1 очко")
	assert.Len(t, quiz.Questions[0].Answers, 2)
	assert.Equal(t, 4, quiz.Questions[1].Points)
	quizRepo.AssertExpectations(t)
}

func TestQuizService_CreateQuiz_Validation(t *testing.T) {
	cases := []struct {
		name  string
		input CreateQuizInput
		field string
	}{
		{"blank title", CreateQuizInput{Title: "  ", TimeLimit: 5}, "title"},
		{"zero time limit", CreateQuizInput{Title: "Q", TimeLimit: 0}, "time_limit"},
		{"bad question type", CreateQuizInput{Title: "Q", TimeLimit: 5, Questions: []QuestionInput{
			{Text: "ok", Type: entity.QuestionTypeOpenEnded},
			{Text: "bad", Type: "XX"},
		}}, "questions[1].question_type"},
		{"negative points", CreateQuizInput{Title: "Q", TimeLimit: 5, Questions: []QuestionInput{
			{Text: "neg", Type: entity.QuestionTypeMultipleChoice, Points: -2},
		}}, "questions[0].points"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quizRepo := new(MockQuizRepository)
			categoryRepo := new(MockCategoryRepository)
			tagRepo := new(MockTagRepository)
			categoryRepo.On("GetByIDs", mock.Anything, mock.Anything).Return([]entity.Category{}, nil)
			tagRepo.On("GetByIDs", mock.Anything, mock.Anything).Return([]entity.Tag{}, nil)

			svc := createTestQuizServiceWithMocks(quizRepo, categoryRepo, tagRepo, nil)
			_, err := svc.CreateQuiz(context.Background(), 1, tc.input)

			require.Error(t, err)
			fe, ok := apperrors.AsFieldError(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, fe.Field)
			quizRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestQuizService_CreateQuiz_UnknownCategory(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("GetByIDs", mock.Anything, []uint{1, 9}).Return([]entity.Category{{ID: 1}}, nil)

	svc := createTestQuizServiceWithMocks(new(MockQuizRepository), categoryRepo, new(MockTagRepository), nil)
	_, err := svc.CreateQuiz(context.Background(), 1, CreateQuizInput{Title: "Q", TimeLimit: 5, CategoryIDs: []uint{1, 9}})

	fe, ok := apperrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "categories", fe.Field)
}

func TestQuizService_GetQuiz_CacheHit(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepository)
	cache := new(MockCacheRepository)
	cache.On("GetJSON", mock.Anything, "quiz:detail:1", mock.AnythingOfType("*entity.Quiz")).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*entity.Quiz)
			dest.ID = 1
			dest.Title = "cached"
		}).Return(nil)

	svc := createTestQuizServiceWithMocks(quizRepo, nil, nil, cache)

	// Act
	quiz, err := svc.GetQuiz(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "cached", quiz.Title)
	quizRepo.AssertNotCalled(t, "GetWithQuestions", mock.Anything, mock.Anything)
}

func TestQuizService_GetQuiz_CacheMissStores(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepository)
	cache := new(MockCacheRepository)
	stored := &entity.Quiz{ID: 1, Title: "fresh"}

	cache.On("GetJSON", mock.Anything, "quiz:detail:1", mock.Anything).Return(apperrors.ErrNotFound)
	quizRepo.On("GetWithQuestions", mock.Anything, uint(1)).Return(stored, nil)
	cache.On("SetJSON", mock.Anything, "quiz:detail:1", stored, time.Minute).Return(nil)

	svc := createTestQuizServiceWithMocks(quizRepo, nil, nil, cache)

	// Act
	quiz, err := svc.GetQuiz(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "fresh", quiz.Title)
	cache.AssertExpectations(t)
}

func TestQuizService_GetQuiz_NotFound(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	quizRepo.On("GetWithQuestions", mock.Anything, uint(5)).Return(nil, apperrors.ErrNotFound)

	svc := createTestQuizServiceWithMocks(quizRepo, nil, nil, nil)
	_, err := svc.GetQuiz(context.Background(), 5)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestQuizService_UpdateQuiz_ReplacesTagsAndInvalidatesCache(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepository)
	tagRepo := new(MockTagRepository)
	cache := new(MockCacheRepository)

	quizRepo.On("GetByID", mock.Anything, uint(1)).Return(&entity.Quiz{ID: 1, Title: "Old", TimeLimit: 5}, nil)
	tagRepo.On("GetByIDs", mock.Anything, []uint{3}).Return([]entity.Tag{{ID: 3, Name: "go"}}, nil)
	quizRepo.On("Update", mock.Anything, mock.MatchedBy(func(q *entity.Quiz) bool {
		return q.Title == "New" && q.TimeLimit == 5 && len(q.Tags) == 1
	}), repository.QuizAssociations{Tags: true}).Return(nil)
	cache.On("Delete", mock.Anything, []string{"quiz:detail:1"}).Return(nil)
	quizRepo.On("GetWithQuestions", mock.Anything, uint(1)).Return(&entity.Quiz{ID: 1, Title: "New"}, nil)

	svc := createTestQuizServiceWithMocks(quizRepo, nil, tagRepo, cache)
	title := "New"
	tags := []uint{3}

	// Act
	quiz, err := svc.UpdateQuiz(context.Background(), 1, UpdateQuizInput{Title: &title, TagIDs: &tags})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "New", quiz.Title)
	quizRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestQuizService_DeleteQuiz_InvalidatesCache(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	cache := new(MockCacheRepository)
	quizRepo.On("Delete", mock.Anything, uint(4)).Return(nil)
	cache.On("Delete", mock.Anything, []string{"quiz:detail:4"}).Return(nil)

	svc := createTestQuizServiceWithMocks(quizRepo, nil, nil, cache)

	require.NoError(t, svc.DeleteQuiz(context.Background(), 4))
	cache.AssertExpectations(t)
}
