package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	"github.com/yourusername/quiz-api/internal/websocket"
)

func createTestFeedbackServiceWithMocks(
	quizRepo *MockQuizRepository,
	participantRepo *MockParticipantRepository,
	feedbackRepo *MockFeedbackRepository,
	events *MockEventPublisher,
) *FeedbackService {
	return &FeedbackService{
		quizRepo:        quizRepo,
		participantRepo: participantRepo,
		feedbackRepo:    feedbackRepo,
		events:          events,
	}
}

func TestFeedbackService_SubmitFeedback_Success(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepository)
	participantRepo := new(MockParticipantRepository)
	feedbackRepo := new(MockFeedbackRepository)
	events := new(MockEventPublisher)

	quizRepo.On("GetByID", mock.Anything, uint(1)).Return(&entity.Quiz{ID: 1}, nil)
	// незавершенная попытка тоже дает право на отзыв
	participantRepo.On("GetByUserAndQuiz", mock.Anything, uint(5), uint(1)).Return(&entity.Participant{ID: 70, UserID: 5, QuizID: 1}, nil)
	feedbackRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *entity.Feedback) bool {
		return f.ParticipantID == 70 && f.QuizID == 1 && f.Rating == 4 && f.Comment == "good"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Feedback).ID = 3
	}).Return(nil)
	events.On("PublishQuizEvent", uint(1), websocket.FEEDBACK_CREATED, mock.Anything).Return()

	svc := createTestFeedbackServiceWithMocks(quizRepo, participantRepo, feedbackRepo, events)

	// Act
	feedback, err := svc.SubmitFeedback(context.Background(), 5, 1, 4, "good")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(3), feedback.ID)
	feedbackRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestFeedbackService_SubmitFeedback_InvalidRatingCheckedFirst(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		quizRepo := new(MockQuizRepository)
		svc := createTestFeedbackServiceWithMocks(quizRepo, new(MockParticipantRepository), new(MockFeedbackRepository), new(MockEventPublisher))

		_, err := svc.SubmitFeedback(context.Background(), 5, 1, rating, "")

		require.Error(t, err)
		fe, ok := apperrors.AsFieldError(err)
		require.True(t, ok)
		assert.Equal(t, "rating", fe.Field)
		quizRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	}
}

func TestFeedbackService_SubmitFeedback_UnknownQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	quizRepo.On("GetByID", mock.Anything, uint(9)).Return(nil, apperrors.ErrNotFound)
	svc := createTestFeedbackServiceWithMocks(quizRepo, new(MockParticipantRepository), new(MockFeedbackRepository), new(MockEventPublisher))

	_, err := svc.SubmitFeedback(context.Background(), 5, 9, 5, "")

	assert.True(t, errors.Is(err, ErrInvalidQuiz))
}

func TestFeedbackService_SubmitFeedback_NotAParticipant(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepository)
	participantRepo := new(MockParticipantRepository)
	feedbackRepo := new(MockFeedbackRepository)
	quizRepo.On("GetByID", mock.Anything, uint(1)).Return(&entity.Quiz{ID: 1}, nil)
	participantRepo.On("GetByUserAndQuiz", mock.Anything, uint(5), uint(1)).Return(nil, apperrors.ErrNotFound)

	svc := createTestFeedbackServiceWithMocks(quizRepo, participantRepo, feedbackRepo, new(MockEventPublisher))

	// Act
	_, err := svc.SubmitFeedback(context.Background(), 5, 1, 5, "nice")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAParticipant))
	fe, ok := apperrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "quiz_id", fe.Field)
	assert.Equal(t, msgFeedbackForbidden, fe.Message)
	feedbackRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFeedbackService_UpdateFeedback_OtherUserForbidden(t *testing.T) {
	feedbackRepo := new(MockFeedbackRepository)
	feedbackRepo.On("GetByID", mock.Anything, uint(3)).
		Return(&entity.Feedback{ID: 3, Rating: 2, Participant: &entity.Participant{UserID: 8}}, nil)

	svc := createTestFeedbackServiceWithMocks(new(MockQuizRepository), new(MockParticipantRepository), feedbackRepo, new(MockEventPublisher))

	_, err := svc.UpdateFeedback(context.Background(), 5, 3, 5, "changed")

	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	feedbackRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestFeedbackService_UpdateFeedback_Owner(t *testing.T) {
	feedbackRepo := new(MockFeedbackRepository)
	feedbackRepo.On("GetByID", mock.Anything, uint(3)).
		Return(&entity.Feedback{ID: 3, Rating: 2, Participant: &entity.Participant{UserID: 5}}, nil)
	feedbackRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Feedback")).Return(nil)

	svc := createTestFeedbackServiceWithMocks(new(MockQuizRepository), new(MockParticipantRepository), feedbackRepo, new(MockEventPublisher))

	feedback, err := svc.UpdateFeedback(context.Background(), 5, 3, 5, "changed")

	require.NoError(t, err)
	assert.Equal(t, 5, feedback.Rating)
	assert.Equal(t, "changed", feedback.Comment)
}

func TestFeedbackService_DeleteFeedback_Owner(t *testing.T) {
	feedbackRepo := new(MockFeedbackRepository)
	feedbackRepo.On("GetByID", mock.Anything, uint(3)).
		Return(&entity.Feedback{ID: 3, Participant: &entity.Participant{UserID: 5}}, nil)
	feedbackRepo.On("Delete", mock.Anything, uint(3)).Return(nil)

	svc := createTestFeedbackServiceWithMocks(new(MockQuizRepository), new(MockParticipantRepository), feedbackRepo, new(MockEventPublisher))

	require.NoError(t, svc.DeleteFeedback(context.Background(), 5, 3))
	feedbackRepo.AssertExpectations(t)
}
