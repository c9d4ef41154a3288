package entity

import (
	"time"
)

const (
	MinFeedbackRating = 1
	MaxFeedbackRating = 5
)

// Feedback - отзыв участника о викторине
type Feedback struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ParticipantID uint         `gorm:"not null;index" json:"participant_id"`
	QuizID        uint         `gorm:"not null;index" json:"quiz_id"`
	Rating        int          `gorm:"not null" json:"rating"`
	Comment       string       `gorm:"type:text;not null;default:''" json:"comment"`
	Participant   *Participant `gorm:"foreignKey:ParticipantID" json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Feedback) TableName() string {
	return "feedbacks"
}

// IsValidRating проверяет, что оценка в диапазоне 1..5
func IsValidRating(rating int) bool {
	return rating >= MinFeedbackRating && rating <= MaxFeedbackRating
}
