package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// AnswerInput - данные варианта ответа
type AnswerInput struct {
	Text      string
	IsCorrect bool
}

// QuestionInput - данные вопроса с вложенными ответами
type QuestionInput struct {
	Text    string
	Type    entity.QuestionType
	Points  int
	Answers []AnswerInput
}

// CreateQuizInput - данные новой викторины
type CreateQuizInput struct {
	Title       string
	Description string
	TimeLimit   int
	CategoryIDs []uint
	TagIDs      []uint
	Questions   []QuestionInput
}

// UpdateQuizInput - частичное обновление викторины; nil означает "не менять"
type UpdateQuizInput struct {
	Title       *string
	Description *string
	TimeLimit   *int
	CategoryIDs *[]uint
	TagIDs      *[]uint
}

// QuizService предоставляет методы для работы с викторинами
type QuizService struct {
	quizRepo     repository.QuizRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	cacheRepo    repository.CacheRepository
	cacheTTL     time.Duration
}

// NewQuizService создает новый сервис викторин. cacheRepo может быть nil.
func NewQuizService(
	quizRepo repository.QuizRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		cacheRepo:    cacheRepo,
		cacheTTL:     cacheTTL,
	}
}

func quizCacheKey(quizID uint) string {
	return fmt.Sprintf("quiz:detail:%d", quizID)
}

// invalidateQuizCache сбрасывает закешированную карточку викторины
func invalidateQuizCache(ctx context.Context, cache repository.CacheRepository, quizID uint) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, quizCacheKey(quizID)); err != nil {
		log.Printf("[QuizService] Не удалось сбросить кеш викторины #%d: %v", quizID, err)
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *QuizService) resolveCategories(ctx context.Context, ids []uint) ([]entity.Category, error) {
	ids = uniqueIDs(ids)
	categories, err := s.categoryRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) != len(ids) {
		return nil, apperrors.NewFieldError("categories", "Invalid category ID", apperrors.ErrValidation)
	}
	return categories, nil
}

func (s *QuizService) resolveTags(ctx context.Context, ids []uint) ([]entity.Tag, error) {
	ids = uniqueIDs(ids)
	tags, err := s.tagRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, apperrors.NewFieldError("tags", "Invalid tag ID", apperrors.ErrValidation)
	}
	return tags, nil
}

func validateTimeLimit(minutes int) error {
	if minutes <= 0 {
		return apperrors.NewFieldError("time_limit", "Time limit must be a positive number of minutes", apperrors.ErrValidation)
	}
	return nil
}

// buildQuestion проверяет данные вопроса; prefix - путь поля для ошибок
func buildQuestion(prefix string, in QuestionInput) (entity.Question, error) {
	if strings.TrimSpace(in.Text) == "" {
		return entity.Question{}, apperrors.NewFieldError(prefix+"text", msgBlankField, apperrors.ErrValidation)
	}
	if !in.Type.IsValid() {
		return entity.Question{}, apperrors.NewFieldError(prefix+"question_type", fmt.Sprintf("\"%s\" is not a valid choice", in.Type), apperrors.ErrValidation)
	}
	points := in.Points
	if points == 0 {
		points = entity.DefaultQuestionPoints
	}
	if points < 1 {
		return entity.Question{}, apperrors.NewFieldError(prefix+"points", "Points must be at least 1", apperrors.ErrValidation)
	}

	question := entity.Question{Text: in.Text, Type: in.Type, Points: points}
	for i, a := range in.Answers {
		if strings.TrimSpace(a.Text) == "" {
			return entity.Question{}, apperrors.NewFieldError(fmt.Sprintf("%sanswers[%d].text", prefix, i), msgBlankField, apperrors.ErrValidation)
		}
		question.Answers = append(question.Answers, entity.Answer{Text: a.Text, IsCorrect: a.IsCorrect})
	}
	return question, nil
}

// CreateQuiz создает викторину с вопросами и ответами одной операцией
func (s *QuizService) CreateQuiz(ctx context.Context, creatorID uint, in CreateQuizInput) (*entity.Quiz, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.NewFieldError("title", msgBlankField, apperrors.ErrValidation)
	}
	if err := validateTimeLimit(in.TimeLimit); err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	quiz := &entity.Quiz{
		Title:       in.Title,
		Description: in.Description,
		TimeLimit:   in.TimeLimit,
		CreatedByID: creatorID,
		Categories:  categories,
		Tags:        tags,
	}
	for i, qIn := range in.Questions {
		question, err := buildQuestion(fmt.Sprintf("questions[%d].", i), qIn)
		if err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	log.Printf("[QuizService] Создана викторина #%d '%s' (%d вопросов) пользователем #%d", quiz.ID, quiz.Title, len(quiz.Questions), creatorID)
	return quiz, nil
}

// GetQuiz возвращает викторину с каталогом, вопросами и ответами; результат кешируется
func (s *QuizService) GetQuiz(ctx context.Context, quizID uint) (*entity.Quiz, error) {
	if s.cacheRepo != nil {
		var cached entity.Quiz
		err := s.cacheRepo.GetJSON(ctx, quizCacheKey(quizID), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[QuizService] Ошибка чтения кеша викторины #%d: %v", quizID, err)
		}
	}

	quiz, err := s.quizRepo.GetWithQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(ctx, quizCacheKey(quizID), quiz, s.cacheTTL); err != nil {
			log.Printf("[QuizService] Не удалось закешировать викторину #%d: %v", quizID, err)
		}
	}
	return quiz, nil
}

// ListQuizzes возвращает викторины по фильтрам
func (s *QuizService) ListQuizzes(ctx context.Context, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	return s.quizRepo.List(ctx, filters, limit, offset)
}

// UpdateQuiz частично обновляет викторину
func (s *QuizService) UpdateQuiz(ctx context.Context, quizID uint, in UpdateQuizInput) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperrors.NewFieldError("title", msgBlankField, apperrors.ErrValidation)
		}
		quiz.Title = *in.Title
	}
	if in.Description != nil {
		quiz.Description = *in.Description
	}
	if in.TimeLimit != nil {
		if err := validateTimeLimit(*in.TimeLimit); err != nil {
			return nil, err
		}
		quiz.TimeLimit = *in.TimeLimit
	}

	var assoc repository.QuizAssociations
	if in.CategoryIDs != nil {
		if quiz.Categories, err = s.resolveCategories(ctx, *in.CategoryIDs); err != nil {
			return nil, err
		}
		assoc.Categories = true
	}
	if in.TagIDs != nil {
		if quiz.Tags, err = s.resolveTags(ctx, *in.TagIDs); err != nil {
			return nil, err
		}
		assoc.Tags = true
	}

	if err := s.quizRepo.Update(ctx, quiz, assoc); err != nil {
		return nil, fmt.Errorf("failed to update quiz #%d: %w", quizID, err)
	}
	invalidateQuizCache(ctx, s.cacheRepo, quizID)

	return s.quizRepo.GetWithQuestions(ctx, quizID)
}

// DeleteQuiz удаляет викторину со всеми вопросами, ответами, участниками и отзывами
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID uint) error {
	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return err
	}
	invalidateQuizCache(ctx, s.cacheRepo, quizID)
	log.Printf("[QuizService] Викторина #%d удалена", quizID)
	return nil
}
