package repository

import (
	"context"
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// InvalidTokenRepository определяет методы для работы с инвалидированными токенами
type InvalidTokenRepository interface {
	// AddInvalidToken добавляет или обновляет запись об инвалидации
	AddInvalidToken(ctx context.Context, userID uint, invalidationTime time.Time) error

	// IsTokenInvalid проверяет, инвалидирован ли токен пользователя
	IsTokenInvalid(ctx context.Context, userID uint, tokenIssuedAt time.Time) (bool, error)

	// GetAllInvalidTokens возвращает все записи об инвалидированных токенах
	GetAllInvalidTokens(ctx context.Context) ([]entity.InvalidToken, error)

	// CleanupOldInvalidTokens удаляет устаревшие записи
	CleanupOldInvalidTokens(ctx context.Context, cutoffTime time.Time) error
}
