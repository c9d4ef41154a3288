package repository

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// QuizFilters определяет фильтры для поиска викторин
type QuizFilters struct {
	Search      string // Поиск по названию/описанию
	CategoryID  uint
	TagID       uint
	CreatedByID uint
}

// IsEmpty сообщает, что ни один фильтр не задан
func (f QuizFilters) IsEmpty() bool {
	return f.Search == "" && f.CategoryID == 0 && f.TagID == 0 && f.CreatedByID == 0
}

// QuizAssociations указывает, какие связи заменить при обновлении викторины
type QuizAssociations struct {
	Categories bool
	Tags       bool
}

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	// Create сохраняет викторину вместе с вложенными вопросами и ответами.
	// Категории и теги должны существовать: создаются только связи.
	Create(ctx context.Context, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id uint) (*entity.Quiz, error)
	// GetWithQuestions загружает категории, теги, вопросы и их ответы
	GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error)
	Update(ctx context.Context, quiz *entity.Quiz, assoc QuizAssociations) error
	List(ctx context.Context, filters QuizFilters, limit, offset int) ([]entity.Quiz, int64, error)
	// Delete удаляет викторину и все зависимые записи в одной транзакции
	Delete(ctx context.Context, id uint) error
}
