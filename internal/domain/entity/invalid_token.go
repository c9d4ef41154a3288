package entity

import (
	"time"
)

// InvalidToken фиксирует момент выхода пользователя: все токены,
// выпущенные раньше InvalidationTime, больше не принимаются.
type InvalidToken struct {
	UserID           uint      `gorm:"primaryKey" json:"user_id"`
	InvalidationTime time.Time `gorm:"not null" json:"invalidation_time"`
}

// TableName задает имя таблицы для GORM
func (InvalidToken) TableName() string {
	return "invalid_tokens"
}

// Revokes сообщает, отозван ли токен, выпущенный в issuedAt
func (it *InvalidToken) Revokes(issuedAt time.Time) bool {
	return !issuedAt.After(it.InvalidationTime)
}
