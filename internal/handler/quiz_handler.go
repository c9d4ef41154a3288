package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	"github.com/yourusername/quiz-api/internal/handler/dto"
	"github.com/yourusername/quiz-api/internal/middleware"
	"github.com/yourusername/quiz-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService *service.QuizService
	pages       PageConfig
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService, pages PageConfig) *QuizHandler {
	return &QuizHandler{quizService: quizService, pages: pages}
}

// AnswerRequest - вариант ответа в запросе
type AnswerRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionRequest - вопрос в запросе (вложенные ответы необязательны)
type QuestionRequest struct {
	Text         string          `json:"text" binding:"required"`
	QuestionType string          `json:"question_type" binding:"required,oneof=MC TF OE"`
	Points       int             `json:"points" binding:"omitempty,min=1"`
	Answers      []AnswerRequest `json:"answers" binding:"dive"`
}

// CreateQuizRequest представляет запрос на создание викторины
type CreateQuizRequest struct {
	Title       string            `json:"title" binding:"required,max=200"`
	Description string            `json:"description"`
	TimeLimit   int               `json:"time_limit" binding:"required,min=1"`
	Categories  []uint            `json:"categories"`
	Tags        []uint            `json:"tags"`
	Questions   []QuestionRequest `json:"questions" binding:"dive"`
}

// UpdateQuizRequest - частичное обновление викторины
type UpdateQuizRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	TimeLimit   *int    `json:"time_limit" binding:"omitempty,min=1"`
	Categories  *[]uint `json:"categories"`
	Tags        *[]uint `json:"tags"`
}

func (r QuestionRequest) toInput() service.QuestionInput {
	in := service.QuestionInput{
		Text:   r.Text,
		Type:   entity.QuestionType(r.QuestionType),
		Points: r.Points,
	}
	for _, a := range r.Answers {
		in.Answers = append(in.Answers, service.AnswerInput{Text: a.Text, IsCorrect: a.IsCorrect})
	}
	return in
}

// CreateQuiz обрабатывает запрос на создание викторины
// POST /api/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.CreateQuizInput{
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		CategoryIDs: req.Categories,
		TagIDs:      req.Tags,
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, q.toInput())
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), userID, in)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, true, true))
}

// GetQuiz возвращает викторину с вопросами.
// Верные ответы видны только сотрудникам.
// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.quizService.GetQuiz(c.Request.Context(), c.MustGet("quizID").(uint))
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true, middleware.IsStaff(c)))
}

// ListQuizzes возвращает список викторин с пагинацией и фильтрацией
// GET /api/quizzes?search=&category_id=&tag_id=&page=&page_size=
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	page, pageSize, offset := pagination(c, h.pages)

	filters := repository.QuizFilters{Search: c.Query("search")}
	if v, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		filters.CategoryID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("tag_id"), 10, 32); err == nil {
		filters.TagID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("created_by"), 10, 32); err == nil {
		filters.CreatedByID = uint(v)
	}

	quizzes, total, err := h.quizService.ListQuizzes(c.Request.Context(), filters, pageSize, offset)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedResponse{
		Results:  dto.NewListQuizResponse(quizzes),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// UpdateQuiz частично обновляет викторину
// PUT /api/quizzes/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req UpdateQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), c.MustGet("quizID").(uint), service.UpdateQuizInput{
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		CategoryIDs: req.Categories,
		TagIDs:      req.Tags,
	})
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true, true))
}

// DeleteQuiz удаляет викторину со всеми зависимыми данными
// DELETE /api/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.quizService.DeleteQuiz(c.Request.Context(), c.MustGet("quizID").(uint)); err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
