package repository

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// FeedbackRepository определяет методы для работы с отзывами
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	// GetByID загружает отзыв вместе с участником (для проверки владельца)
	GetByID(ctx context.Context, id uint) (*entity.Feedback, error)
	ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Feedback, int64, error)
	Update(ctx context.Context, feedback *entity.Feedback) error
	Delete(ctx context.Context, id uint) error
}
