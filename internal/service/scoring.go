package service

import (
	"fmt"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// SubmittedAnswer - выбранный вариант ответа на вопрос
type SubmittedAnswer struct {
	QuestionID       uint `json:"question_id"`
	SelectedAnswerID uint `json:"selected_answer"`
}

// ScoreSubmission проверяет ответы по вопросам викторины и суммирует очки.
// Ответы проверяются по порядку; первая ошибка прерывает подсчет.
// Повторяющиеся question_id учитываются независимо.
func ScoreSubmission(questions []entity.Question, answers []SubmittedAnswer) (int, error) {
	byID := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	score := 0
	for i, submitted := range answers {
		question, ok := byID[submitted.QuestionID]
		if !ok {
			return 0, apperrors.NewFieldError(fmt.Sprintf("answers[%d].question_id", i), msgQuestionNotInQuiz, ErrQuestionNotInQuiz)
		}
		answer, ok := question.FindAnswer(submitted.SelectedAnswerID)
		if !ok {
			return 0, apperrors.NewFieldError(fmt.Sprintf("answers[%d].selected_answer", i), msgInvalidAnswer, ErrInvalidAnswerReference)
		}
		score += question.PointsFor(answer)
	}
	return score, nil
}
