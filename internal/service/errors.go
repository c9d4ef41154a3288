package service

import (
	"fmt"

	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// Ошибки жизненного цикла попытки. Все они оборачивают apperrors.ErrValidation,
// поэтому обработчики отдают их как 400 с указанием поля.
var (
	ErrInvalidQuiz            = fmt.Errorf("%w: invalid quiz", apperrors.ErrValidation)
	ErrNoAttemptStarted       = fmt.Errorf("%w: no attempt started", apperrors.ErrValidation)
	ErrAttemptExpired         = fmt.Errorf("%w: attempt expired", apperrors.ErrValidation)
	ErrQuestionNotInQuiz      = fmt.Errorf("%w: question not in quiz", apperrors.ErrValidation)
	ErrInvalidAnswerReference = fmt.Errorf("%w: invalid answer reference", apperrors.ErrValidation)
	ErrNotAParticipant        = fmt.Errorf("%w: not a participant", apperrors.ErrValidation)
)

// Сообщения для клиентов
const (
	msgInvalidQuizID      = "Invalid quiz ID"
	msgParticipantMissing = "Participant not found. Start the quiz first"
	msgAttemptExpired     = "Participant's time is over. Submission not allowed."
	msgQuestionNotInQuiz  = "Question does not belong to the given quiz"
	msgInvalidAnswer      = "Invalid selected answer / answer does not belong to the given question"
	msgFeedbackForbidden  = "You can provide feedback after taking the quiz"
	msgInvalidRating      = "Rating must be between 1 and 5"
	msgBlankField         = "This field may not be blank"
)

func invalidQuizError() error {
	return apperrors.NewFieldError("quiz_id", msgInvalidQuizID, ErrInvalidQuiz)
}
