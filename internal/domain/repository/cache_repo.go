package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Промах кеша возвращается как ErrNotFound.
type CacheRepository interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}
