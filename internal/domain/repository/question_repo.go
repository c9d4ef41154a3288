package repository

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	// Create сохраняет вопрос вместе с вложенными ответами
	Create(ctx context.Context, question *entity.Question) error
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	// ListByQuiz возвращает вопросы викторины с ответами, упорядоченные по id
	ListByQuiz(ctx context.Context, quizID uint) ([]entity.Question, error)
	Update(ctx context.Context, question *entity.Question) error
	// Delete удаляет вопрос и его ответы в одной транзакции
	Delete(ctx context.Context, id uint) error
}

// AnswerRepository определяет методы для работы с вариантами ответов
type AnswerRepository interface {
	Create(ctx context.Context, answer *entity.Answer) error
	GetByID(ctx context.Context, id uint) (*entity.Answer, error)
	ListByQuestion(ctx context.Context, questionID uint) ([]entity.Answer, error)
	Update(ctx context.Context, answer *entity.Answer) error
	Delete(ctx context.Context, id uint) error
}
