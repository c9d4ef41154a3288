package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// UpdateQuestionInput - частичное обновление вопроса
type UpdateQuestionInput struct {
	Text   *string
	Type   *entity.QuestionType
	Points *int
}

// QuestionService управляет вопросами и вариантами ответов.
// Любое изменение сбрасывает кеш карточки викторины.
type QuestionService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	cacheRepo    repository.CacheRepository
}

// NewQuestionService создает новый сервис вопросов. cacheRepo может быть nil.
func NewQuestionService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	cacheRepo repository.CacheRepository,
) *QuestionService {
	return &QuestionService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		cacheRepo:    cacheRepo,
	}
}

// CreateQuestion добавляет вопрос (с вариантами) в викторину
func (s *QuestionService) CreateQuestion(ctx context.Context, quizID uint, in QuestionInput) (*entity.Question, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, invalidQuizError()
		}
		return nil, fmt.Errorf("failed to load quiz #%d: %w", quizID, err)
	}

	question, err := buildQuestion("", in)
	if err != nil {
		return nil, err
	}
	question.QuizID = quizID

	if err := s.questionRepo.Create(ctx, &question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	invalidateQuizCache(ctx, s.cacheRepo, quizID)

	log.Printf("[QuestionService] Вопрос #%d добавлен в викторину #%d", question.ID, quizID)
	return &question, nil
}

// GetQuestion возвращает вопрос с вариантами
func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// ListQuestions возвращает вопросы викторины
func (s *QuestionService) ListQuestions(ctx context.Context, quizID uint) ([]entity.Question, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.questionRepo.ListByQuiz(ctx, quizID)
}

// UpdateQuestion частично обновляет вопрос
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uint, in UpdateQuestionInput) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			return nil, apperrors.NewFieldError("text", msgBlankField, apperrors.ErrValidation)
		}
		question.Text = *in.Text
	}
	if in.Type != nil {
		if !in.Type.IsValid() {
			return nil, apperrors.NewFieldError("question_type", fmt.Sprintf("\"%s\" is not a valid choice", *in.Type), apperrors.ErrValidation)
		}
		question.Type = *in.Type
	}
	if in.Points != nil {
		if *in.Points < 1 {
			return nil, apperrors.NewFieldError("points", "Points must be at least 1", apperrors.ErrValidation)
		}
		question.Points = *in.Points
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question #%d: %w", id, err)
	}
	invalidateQuizCache(ctx, s.cacheRepo, question.QuizID)
	return question, nil
}

// DeleteQuestion удаляет вопрос вместе с вариантами
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) error {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateQuizCache(ctx, s.cacheRepo, question.QuizID)
	return nil
}

// CreateAnswer добавляет вариант ответа к вопросу
func (s *QuestionService) CreateAnswer(ctx context.Context, questionID uint, in AnswerInput) (*entity.Answer, error) {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewFieldError("question_id", "Invalid question ID", apperrors.ErrValidation)
		}
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, apperrors.NewFieldError("text", msgBlankField, apperrors.ErrValidation)
	}

	answer := &entity.Answer{QuestionID: questionID, Text: in.Text, IsCorrect: in.IsCorrect}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}
	invalidateQuizCache(ctx, s.cacheRepo, question.QuizID)
	return answer, nil
}

// GetAnswer возвращает вариант ответа
func (s *QuestionService) GetAnswer(ctx context.Context, id uint) (*entity.Answer, error) {
	return s.answerRepo.GetByID(ctx, id)
}

// ListAnswers возвращает варианты ответа на вопрос
func (s *QuestionService) ListAnswers(ctx context.Context, questionID uint) ([]entity.Answer, error) {
	if _, err := s.questionRepo.GetByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.answerRepo.ListByQuestion(ctx, questionID)
}

// UpdateAnswer меняет текст и/или признак верности варианта
func (s *QuestionService) UpdateAnswer(ctx context.Context, id uint, text *string, isCorrect *bool) (*entity.Answer, error) {
	answer, err := s.answerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if text != nil {
		if strings.TrimSpace(*text) == "" {
			return nil, apperrors.NewFieldError("text", msgBlankField, apperrors.ErrValidation)
		}
		answer.Text = *text
	}
	if isCorrect != nil {
		answer.IsCorrect = *isCorrect
	}

	if err := s.answerRepo.Update(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to update answer #%d: %w", id, err)
	}
	s.invalidateByQuestion(ctx, answer.QuestionID)
	return answer, nil
}

// DeleteAnswer удаляет вариант ответа
func (s *QuestionService) DeleteAnswer(ctx context.Context, id uint) error {
	answer, err := s.answerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.answerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateByQuestion(ctx, answer.QuestionID)
	return nil
}

func (s *QuestionService) invalidateByQuestion(ctx context.Context, questionID uint) {
	if s.cacheRepo == nil {
		return
	}
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		log.Printf("[QuestionService] Не удалось найти вопрос #%d для сброса кеша: %v", questionID, err)
		return
	}
	invalidateQuizCache(ctx, s.cacheRepo, question.QuizID)
}
