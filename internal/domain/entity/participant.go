package entity

import (
	"time"
)

// AttemptStatus - производное состояние попытки
type AttemptStatus string

const (
	AttemptStatusNone       AttemptStatus = "no_attempt"
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusScored     AttemptStatus = "scored"
	AttemptStatusExpired    AttemptStatus = "expired"
)

// Participant хранит текущую попытку пользователя в викторине.
// Пара (user_id, quiz_id) уникальна: повторный старт перезаписывает окно и сбрасывает счет.
type Participant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_participants_user_quiz" json:"user_id"`
	QuizID    uint      `gorm:"not null;uniqueIndex:idx_participants_user_quiz;index" json:"quiz_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Score     *int      `json:"score"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Participant) TableName() string {
	return "participants"
}

// IsExpired сообщает, истек ли срок попытки. Момент now == EndTime еще допустим.
func (p *Participant) IsExpired(now time.Time) bool {
	return now.After(p.EndTime)
}

// HasScore сообщает, записан ли результат
func (p *Participant) HasScore() bool {
	return p.Score != nil
}

// Status вычисляет состояние попытки на момент now.
// Записанный результат имеет приоритет над истечением срока.
func (p *Participant) Status(now time.Time) AttemptStatus {
	if p == nil {
		return AttemptStatusNone
	}
	if p.HasScore() {
		return AttemptStatusScored
	}
	if p.IsExpired(now) {
		return AttemptStatusExpired
	}
	return AttemptStatusInProgress
}

// Remaining возвращает оставшееся время попытки (не меньше нуля)
func (p *Participant) Remaining(now time.Time) time.Duration {
	if p.IsExpired(now) {
		return 0
	}
	return p.EndTime.Sub(now)
}
