package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
)

// ParticipantRepo реализует repository.ParticipantRepository
type ParticipantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo создает новый репозиторий участников
func NewParticipantRepo(db *gorm.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// UpsertAttempt выполняет INSERT ... ON CONFLICT (user_id, quiz_id) DO UPDATE.
// Вставляемый score равен NULL, поэтому перезапуск всегда сбрасывает результат.
// RETURNING * возвращает сохраненные id и created_at существующей строки.
func (r *ParticipantRepo) UpsertAttempt(ctx context.Context, userID, quizID uint, start, end time.Time) (*entity.Participant, error) {
	participant := entity.Participant{
		UserID:    userID,
		QuizID:    quizID,
		StartTime: start,
		EndTime:   end,
	}
	err := r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "score", "updated_at"}),
		},
		clause.Returning{},
	).Create(&participant).Error
	if err != nil {
		return nil, mapError(err, "participant")
	}
	return &participant, nil
}

// GetByUserAndQuiz возвращает попытку пользователя
func (r *ParticipantRepo) GetByUserAndQuiz(ctx context.Context, userID, quizID uint) (*entity.Participant, error) {
	var participant entity.Participant
	err := r.db.WithContext(ctx).Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&participant).Error
	if err != nil {
		return nil, mapError(err, "participant")
	}
	return &participant, nil
}

// SubmitScore блокирует строку участника до конца транзакции.
// Параллельный UpsertAttempt для той же пары ждет освобождения блокировки.
func (r *ParticipantRepo) SubmitScore(ctx context.Context, userID, quizID uint, grade repository.GradeFunc) (*entity.Participant, error) {
	var locked entity.Participant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND quiz_id = ?", userID, quizID).
			First(&locked).Error
		if err != nil {
			return mapError(err, "participant")
		}

		score, err := grade(&locked)
		if err != nil {
			return err
		}

		if err := tx.Model(&locked).Update("score", score).Error; err != nil {
			return err
		}
		locked.Score = &score
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &locked, nil
}

// ListByQuiz возвращает участников викторины с пагинацией
func (r *ParticipantRepo) ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Participant, int64, error) {
	var participants []entity.Participant
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Participant{}).Where("quiz_id = ?", quizID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("score DESC NULLS LAST, start_time").
		Limit(limit).Offset(offset).
		Find(&participants).Error
	if err != nil {
		return nil, 0, err
	}
	return participants, total, nil
}

// ListAllByQuiz возвращает всех участников викторины для выгрузки
func (r *ParticipantRepo) ListAllByQuiz(ctx context.Context, quizID uint) ([]entity.Participant, error) {
	var participants []entity.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("quiz_id = ?", quizID).
		Order("score DESC NULLS LAST, start_time").
		Find(&participants).Error
	return participants, err
}
