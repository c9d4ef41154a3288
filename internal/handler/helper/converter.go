package helper

import (
	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// AnswerOption представляет вариант ответа для клиента.
// IsCorrect раскрывается только сотрудникам.
type AnswerOption struct {
	ID         uint   `json:"id"`
	QuestionID uint   `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
}

// ConvertAnswers преобразует варианты ответа, скрывая признак верности, если revealCorrect == false
func ConvertAnswers(answers []entity.Answer, revealCorrect bool) []AnswerOption {
	converted := make([]AnswerOption, len(answers))
	for i := range answers {
		converted[i] = ConvertAnswer(&answers[i], revealCorrect)
	}
	return converted
}

// ConvertAnswer преобразует один вариант ответа
func ConvertAnswer(a *entity.Answer, revealCorrect bool) AnswerOption {
	option := AnswerOption{ID: a.ID, QuestionID: a.QuestionID, Text: a.Text}
	if revealCorrect {
		isCorrect := a.IsCorrect
		option.IsCorrect = &isCorrect
	}
	return option
}
