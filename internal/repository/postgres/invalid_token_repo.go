package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// InvalidTokenRepo реализует repository.InvalidTokenRepository
type InvalidTokenRepo struct {
	db *gorm.DB
}

// NewInvalidTokenRepo создает новый репозиторий инвалидированных токенов
func NewInvalidTokenRepo(db *gorm.DB) *InvalidTokenRepo {
	return &InvalidTokenRepo{db: db}
}

// AddInvalidToken добавляет или продлевает запись об инвалидации (upsert по user_id)
func (r *InvalidTokenRepo) AddInvalidToken(ctx context.Context, userID uint, invalidationTime time.Time) error {
	record := entity.InvalidToken{UserID: userID, InvalidationTime: invalidationTime}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"invalidation_time"}),
	}).Create(&record).Error
	if err != nil {
		log.Printf("[InvalidTokenRepo] Ошибка при добавлении записи для пользователя ID=%d: %v", userID, err)
		return err
	}
	return nil
}

// IsTokenInvalid проверяет, инвалидирован ли токен пользователя
func (r *InvalidTokenRepo) IsTokenInvalid(ctx context.Context, userID uint, tokenIssuedAt time.Time) (bool, error) {
	var record entity.InvalidToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return record.Revokes(tokenIssuedAt), nil
}

// GetAllInvalidTokens возвращает все записи об инвалидированных токенах
func (r *InvalidTokenRepo) GetAllInvalidTokens(ctx context.Context) ([]entity.InvalidToken, error) {
	var tokens []entity.InvalidToken
	if err := r.db.WithContext(ctx).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// CleanupOldInvalidTokens удаляет записи старше cutoffTime
func (r *InvalidTokenRepo) CleanupOldInvalidTokens(ctx context.Context, cutoffTime time.Time) error {
	result := r.db.WithContext(ctx).Where("invalidation_time < ?", cutoffTime).Delete(&entity.InvalidToken{})
	if result.Error != nil {
		return result.Error
	}
	log.Printf("[InvalidTokenRepo] Удалено %d устаревших записей", result.RowsAffected)
	return nil
}
