package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// FeedbackRepo реализует repository.FeedbackRepository
type FeedbackRepo struct {
	db *gorm.DB
}

// NewFeedbackRepo создает новый репозиторий отзывов
func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// Create сохраняет отзыв
func (r *FeedbackRepo) Create(ctx context.Context, feedback *entity.Feedback) error {
	return mapError(r.db.WithContext(ctx).Create(feedback).Error, "feedback")
}

// GetByID возвращает отзыв вместе с участником
func (r *FeedbackRepo) GetByID(ctx context.Context, id uint) (*entity.Feedback, error) {
	var feedback entity.Feedback
	if err := r.db.WithContext(ctx).Preload("Participant").First(&feedback, id).Error; err != nil {
		return nil, mapError(err, "feedback")
	}
	return &feedback, nil
}

// ListByQuiz возвращает отзывы о викторине, новые первыми
func (r *FeedbackRepo) ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Feedback, int64, error) {
	var feedbacks []entity.Feedback
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Feedback{}).Where("quiz_id = ?", quizID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&feedbacks).Error; err != nil {
		return nil, 0, err
	}
	return feedbacks, total, nil
}

// Update обновляет оценку и комментарий
func (r *FeedbackRepo) Update(ctx context.Context, feedback *entity.Feedback) error {
	result := r.db.WithContext(ctx).Model(feedback).Select("rating", "comment").Updates(feedback)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет отзыв
func (r *FeedbackRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Feedback{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
