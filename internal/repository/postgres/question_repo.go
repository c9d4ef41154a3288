package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает вопрос вместе с вложенными ответами
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	return mapError(r.db.WithContext(ctx).Create(question).Error, "question")
}

// GetByID возвращает вопрос с ответами
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("answers.id") }).
		First(&question, id).Error
	if err != nil {
		return nil, mapError(err, "question")
	}
	return &question, nil
}

// ListByQuiz возвращает вопросы викторины с ответами
func (r *QuestionRepo) ListByQuiz(ctx context.Context, quizID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("answers.id") }).
		Where("quiz_id = ?", quizID).
		Order("id").
		Find(&questions).Error
	return questions, err
}

// Update обновляет текст, тип и стоимость вопроса
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	result := r.db.WithContext(ctx).Model(question).Select("text", "type", "points").Updates(question)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет вопрос и его ответы
func (r *QuestionRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&entity.Answer{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Question{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий вариантов ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Create создает вариант ответа
func (r *AnswerRepo) Create(ctx context.Context, answer *entity.Answer) error {
	return mapError(r.db.WithContext(ctx).Create(answer).Error, "answer")
}

// GetByID возвращает вариант ответа по ID
func (r *AnswerRepo) GetByID(ctx context.Context, id uint) (*entity.Answer, error) {
	var answer entity.Answer
	if err := r.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, mapError(err, "answer")
	}
	return &answer, nil
}

// ListByQuestion возвращает варианты ответа вопроса
func (r *AnswerRepo) ListByQuestion(ctx context.Context, questionID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.WithContext(ctx).Where("question_id = ?", questionID).Order("id").Find(&answers).Error
	return answers, err
}

// Update обновляет текст и признак правильности
func (r *AnswerRepo) Update(ctx context.Context, answer *entity.Answer) error {
	result := r.db.WithContext(ctx).Model(answer).Select("text", "is_correct").Updates(answer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет вариант ответа
func (r *AnswerRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Answer{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
