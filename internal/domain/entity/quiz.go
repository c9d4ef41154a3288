package entity

import (
	"time"
)

// Quiz представляет викторину с ограничением по времени прохождения
type Quiz struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	TimeLimit   int        `gorm:"not null" json:"time_limit"` // минуты
	CreatedByID uint       `gorm:"not null;index" json:"created_by"`
	Categories  []Category `gorm:"many2many:quiz_categories;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	Tags        []Tag      `gorm:"many2many:quiz_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Questions   []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// Duration возвращает лимит времени на попытку
func (q *Quiz) Duration() time.Duration {
	return time.Duration(q.TimeLimit) * time.Minute
}

// AttemptWindow возвращает интервал попытки, начатой в start
func (q *Quiz) AttemptWindow(start time.Time) (time.Time, time.Time) {
	return start, start.Add(q.Duration())
}

// IsOwnedBy проверяет, создана ли викторина пользователем
func (q *Quiz) IsOwnedBy(userID uint) bool {
	return q.CreatedByID == userID
}
