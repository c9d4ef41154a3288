package repository

import (
	"context"
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// GradeFunc вычисляет результат по заблокированной записи участника.
// Ошибка отменяет запись результата.
type GradeFunc func(p *entity.Participant) (int, error)

// ParticipantRepository определяет методы для работы с попытками.
// Все изменения одной пары (user, quiz) сериализуются на уровне БД.
type ParticipantRepository interface {
	// UpsertAttempt атомарно создает попытку или перезапускает существующую,
	// сбрасывая score в NULL.
	UpsertAttempt(ctx context.Context, userID, quizID uint, start, end time.Time) (*entity.Participant, error)
	GetByUserAndQuiz(ctx context.Context, userID, quizID uint) (*entity.Participant, error)
	// SubmitScore блокирует строку участника (SELECT ... FOR UPDATE), вызывает grade
	// и записывает результат в той же транзакции. Возвращает ErrNotFound, если попытки нет.
	SubmitScore(ctx context.Context, userID, quizID uint, grade GradeFunc) (*entity.Participant, error)
	ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Participant, int64, error)
	// ListAllByQuiz возвращает всех участников с пользователями для выгрузки
	ListAllByQuiz(ctx context.Context, quizID uint) ([]entity.Participant, error)
}
