package entity

import (
	"time"
)

// QuestionType - тип вопроса
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MC"
	QuestionTypeTrueFalse      QuestionType = "TF"
	QuestionTypeOpenEnded      QuestionType = "OE"
)

// DefaultQuestionPoints - стоимость вопроса, если она не указана
const DefaultQuestionPoints = 1

// IsValid проверяет, что тип вопроса известен
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeOpenEnded:
		return true
	}
	return false
}

// Question представляет вопрос викторины
type Question struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	QuizID    uint         `gorm:"not null;index" json:"quiz_id"`
	Text      string       `gorm:"type:text;not null" json:"text"`
	Type      QuestionType `gorm:"size:2;not null" json:"question_type"`
	Points    int          `gorm:"not null;default:1" json:"points"`
	Answers   []Answer     `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// FindAnswer ищет вариант ответа среди вариантов вопроса
func (q *Question) FindAnswer(answerID uint) (*Answer, bool) {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i], true
		}
	}
	return nil, false
}

// PointsFor возвращает очки за выбранный вариант: points, если вариант верный, иначе 0.
// Вариант должен принадлежать вопросу.
func (q *Question) PointsFor(answer *Answer) int {
	if answer == nil || !answer.IsCorrect {
		return 0
	}
	return q.Points
}

// Answer - вариант ответа. Верными могут быть несколько вариантов.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}
