package postgres

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает викторину с вложенными вопросами и ответами.
// Категории и теги не вставляются повторно, создаются только строки связей.
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	err := r.db.WithContext(ctx).Omit("Categories.*", "Tags.*").Create(quiz).Error
	return mapError(err, "quiz")
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, mapError(err, "quiz")
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с каталогом, вопросами и ответами
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB { return db.Order("answers.id") }).
		First(&quiz, id).Error
	if err != nil {
		return nil, mapError(err, "quiz")
	}
	return &quiz, nil
}

// Update обновляет поля викторины и, при необходимости, заменяет категории и теги
func (r *QuizRepo) Update(ctx context.Context, quiz *entity.Quiz, assoc repository.QuizAssociations) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(quiz).Select("title", "description", "time_limit").Updates(quiz)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		if assoc.Categories {
			if err := tx.Model(quiz).Association("Categories").Replace(quiz.Categories); err != nil {
				return fmt.Errorf("replace categories of quiz #%d: %w", quiz.ID, err)
			}
		}
		if assoc.Tags {
			if err := tx.Model(quiz).Association("Tags").Replace(quiz.Tags); err != nil {
				return fmt.Errorf("replace tags of quiz #%d: %w", quiz.ID, err)
			}
		}
		return nil
	})
}

// List возвращает список викторин с фильтрами и total count
func (r *QuizRepo) List(ctx context.Context, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	var quizzes []entity.Quiz
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quiz{})

	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}
	if filters.CategoryID != 0 {
		query = query.Where("id IN (?)", r.db.Table("quiz_categories").Select("quiz_id").Where("category_id = ?", filters.CategoryID))
	}
	if filters.TagID != 0 {
		query = query.Where("id IN (?)", r.db.Table("quiz_tags").Select("quiz_id").Where("tag_id = ?", filters.TagID))
	}
	if filters.CreatedByID != 0 {
		query = query.Where("created_by_id = ?", filters.CreatedByID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Categories").Preload("Tags").
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&quizzes).Error
	if err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// Delete удаляет викторину каскадно: ответы, вопросы, отзывы, участников, связи с каталогом.
// Все шаги выполняются в одной транзакции, частичное удаление не наблюдаемо.
func (r *QuizRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz entity.Quiz
		if err := tx.Select("id").First(&quiz, id).Error; err != nil {
			return mapError(err, "quiz")
		}

		var questionIDs []uint
		if err := tx.Model(&entity.Question{}).Where("quiz_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&entity.Answer{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&entity.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&entity.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM quiz_categories WHERE quiz_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM quiz_tags WHERE quiz_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.Quiz{}, id).Error; err != nil {
			return err
		}

		log.Printf("[QuizRepo] Викторина #%d удалена вместе с %d вопросами", id, len(questionIDs))
		return nil
	})
}
