package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	"github.com/yourusername/quiz-api/internal/websocket"
)

// FeedbackService управляет отзывами участников
type FeedbackService struct {
	quizRepo        repository.QuizRepository
	participantRepo repository.ParticipantRepository
	feedbackRepo    repository.FeedbackRepository
	events          EventPublisher
}

// NewFeedbackService создает новый сервис отзывов
func NewFeedbackService(
	quizRepo repository.QuizRepository,
	participantRepo repository.ParticipantRepository,
	feedbackRepo repository.FeedbackRepository,
	events EventPublisher,
) *FeedbackService {
	return &FeedbackService{
		quizRepo:        quizRepo,
		participantRepo: participantRepo,
		feedbackRepo:    feedbackRepo,
		events:          publisherOrNoop(events),
	}
}

func validateRating(rating int) error {
	if !entity.IsValidRating(rating) {
		return apperrors.NewFieldError("rating", msgInvalidRating, apperrors.ErrValidation)
	}
	return nil
}

// SubmitFeedback оставляет отзыв. Нужна попытка пользователя в этой викторине
// (в любом состоянии, в том числе незавершенная).
func (s *FeedbackService) SubmitFeedback(ctx context.Context, userID, quizID uint, rating int, comment string) (*entity.Feedback, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, invalidQuizError()
		}
		return nil, fmt.Errorf("failed to load quiz #%d: %w", quizID, err)
	}

	participant, err := s.participantRepo.GetByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewFieldError("quiz_id", msgFeedbackForbidden, ErrNotAParticipant)
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	feedback := &entity.Feedback{
		ParticipantID: participant.ID,
		QuizID:        quizID,
		Rating:        rating,
		Comment:       comment,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	log.Printf("[FeedbackService] Отзыв #%d к викторине #%d от пользователя #%d (оценка %d)", feedback.ID, quizID, userID, rating)
	s.events.PublishQuizEvent(quizID, websocket.FEEDBACK_CREATED, map[string]interface{}{
		"feedback_id": feedback.ID,
		"rating":      rating,
	})

	return feedback, nil
}

// ListFeedback возвращает отзывы о викторине
func (s *FeedbackService) ListFeedback(ctx context.Context, quizID uint, limit, offset int) ([]entity.Feedback, int64, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		return nil, 0, err
	}
	return s.feedbackRepo.ListByQuiz(ctx, quizID, limit, offset)
}

// GetFeedback возвращает отзыв по ID
func (s *FeedbackService) GetFeedback(ctx context.Context, id uint) (*entity.Feedback, error) {
	return s.feedbackRepo.GetByID(ctx, id)
}

// ownedFeedback загружает отзыв и проверяет, что он принадлежит пользователю
func (s *FeedbackService) ownedFeedback(ctx context.Context, userID, id uint) (*entity.Feedback, error) {
	feedback, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if feedback.Participant == nil || feedback.Participant.UserID != userID {
		return nil, fmt.Errorf("%w: feedback #%d belongs to another user", apperrors.ErrForbidden, id)
	}
	return feedback, nil
}

// UpdateFeedback меняет оценку и комментарий своего отзыва
func (s *FeedbackService) UpdateFeedback(ctx context.Context, userID, id uint, rating int, comment string) (*entity.Feedback, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	feedback, err := s.ownedFeedback(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	feedback.Rating = rating
	feedback.Comment = comment
	if err := s.feedbackRepo.Update(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to update feedback #%d: %w", id, err)
	}
	return feedback, nil
}

// DeleteFeedback удаляет свой отзыв
func (s *FeedbackService) DeleteFeedback(ctx context.Context, userID, id uint) error {
	if _, err := s.ownedFeedback(ctx, userID, id); err != nil {
		return err
	}
	return s.feedbackRepo.Delete(ctx, id)
}
