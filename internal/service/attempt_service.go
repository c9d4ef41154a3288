package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	"github.com/yourusername/quiz-api/internal/websocket"
)

// AttemptResult - итог успешной сдачи попытки
type AttemptResult struct {
	Participant *entity.Participant
	Answers     []SubmittedAnswer
	Score       int
}

// AttemptService управляет жизненным циклом попыток: старт, сдача, чтение
type AttemptService struct {
	quizRepo        repository.QuizRepository
	questionRepo    repository.QuestionRepository
	participantRepo repository.ParticipantRepository
	events          EventPublisher
	now             func() time.Time
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	participantRepo repository.ParticipantRepository,
	events EventPublisher,
) *AttemptService {
	return &AttemptService{
		quizRepo:        quizRepo,
		questionRepo:    questionRepo,
		participantRepo: participantRepo,
		events:          publisherOrNoop(events),
		now:             time.Now,
	}
}

// loadQuiz возвращает викторину или ErrInvalidQuiz на поле quiz_id
func (s *AttemptService) loadQuiz(ctx context.Context, quizID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, invalidQuizError()
		}
		return nil, fmt.Errorf("failed to load quiz #%d: %w", quizID, err)
	}
	return quiz, nil
}

// StartAttempt начинает или перезапускает попытку: окно [now, now+time_limit], score = NULL.
func (s *AttemptService) StartAttempt(ctx context.Context, userID, quizID uint) (*entity.Participant, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	start, end := quiz.AttemptWindow(s.now())
	participant, err := s.participantRepo.UpsertAttempt(ctx, userID, quizID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}

	log.Printf("[AttemptService] Пользователь #%d начал викторину #%d, дедлайн %s", userID, quizID, end.Format(time.RFC3339))
	s.events.PublishQuizEvent(quizID, websocket.ATTEMPT_STARTED, map[string]interface{}{
		"user_id":  userID,
		"end_time": end,
	})

	return participant, nil
}

// SubmitAttempt проверяет ответы и записывает результат.
// Порядок проверок: викторина, наличие попытки, дедлайн, затем ответы по порядку.
// Проверка дедлайна, чтение вопросов и запись выполняются после блокировки строки участника;
// при любой ошибке сохраненный результат не меняется.
// Блокируется только строка участника: правка ответа, зафиксированная после чтения вопросов,
// на текущую сдачу не влияет.
func (s *AttemptService) SubmitAttempt(ctx context.Context, userID, quizID uint, answers []SubmittedAnswer) (*AttemptResult, error) {
	if _, err := s.loadQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	var score int
	participant, err := s.participantRepo.SubmitScore(ctx, userID, quizID, func(p *entity.Participant) (int, error) {
		if p.IsExpired(s.now()) {
			return 0, apperrors.NewFieldError("quiz_id", msgAttemptExpired, ErrAttemptExpired)
		}
		questions, err := s.questionRepo.ListByQuiz(ctx, quizID)
		if err != nil {
			return 0, fmt.Errorf("failed to load questions of quiz #%d: %w", quizID, err)
		}
		graded, err := ScoreSubmission(questions, answers)
		if err != nil {
			return 0, err
		}
		score = graded
		return graded, nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewFieldError("quiz_id", msgParticipantMissing, ErrNoAttemptStarted)
		}
		if errors.Is(err, apperrors.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	log.Printf("[AttemptService] Пользователь #%d сдал викторину #%d: %d очков (%d ответов)", userID, quizID, score, len(answers))
	s.events.PublishQuizEvent(quizID, websocket.ATTEMPT_SUBMITTED, map[string]interface{}{
		"user_id": userID,
		"score":   score,
	})

	return &AttemptResult{Participant: participant, Answers: answers, Score: score}, nil
}

// GetAttempt возвращает попытку пользователя и ее состояние.
// Если попытки нет, participant == nil и статус no_attempt.
func (s *AttemptService) GetAttempt(ctx context.Context, userID, quizID uint) (*entity.Participant, entity.AttemptStatus, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		return nil, entity.AttemptStatusNone, err
	}

	participant, err := s.participantRepo.GetByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, entity.AttemptStatusNone, nil
		}
		return nil, entity.AttemptStatusNone, err
	}
	return participant, participant.Status(s.now()), nil
}

// ListParticipants возвращает участников викторины с пагинацией
func (s *AttemptService) ListParticipants(ctx context.Context, quizID uint, limit, offset int) ([]entity.Participant, int64, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		return nil, 0, err
	}
	return s.participantRepo.ListByQuiz(ctx, quizID, limit, offset)
}

// ExportParticipants возвращает викторину и всех ее участников для выгрузки
func (s *AttemptService) ExportParticipants(ctx context.Context, quizID uint) (*entity.Quiz, []entity.Participant, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.participantRepo.ListAllByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load participants of quiz #%d: %w", quizID, err)
	}
	return quiz, participants, nil
}

// Now возвращает текущее время сервиса (для вычисления статусов в ответах)
func (s *AttemptService) Now() time.Time {
	return s.now()
}
