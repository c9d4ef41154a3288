package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/handler/dto"
	"github.com/yourusername/quiz-api/internal/handler/helper"
	"github.com/yourusername/quiz-api/internal/middleware"
	"github.com/yourusername/quiz-api/internal/service"
)

// QuestionHandler обрабатывает запросы к вопросам и вариантам ответов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// UpdateQuestionRequest - частичное обновление вопроса
type UpdateQuestionRequest struct {
	Text         *string `json:"text" binding:"omitempty,min=1"`
	QuestionType *string `json:"question_type" binding:"omitempty,oneof=MC TF OE"`
	Points       *int    `json:"points" binding:"omitempty,min=1"`
}

// UpdateAnswerRequest - частичное обновление варианта ответа
type UpdateAnswerRequest struct {
	Text      *string `json:"text" binding:"omitempty,min=1"`
	IsCorrect *bool   `json:"is_correct"`
}

// CreateQuestion добавляет вопрос в викторину
// POST /api/quizzes/:id/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req QuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), c.MustGet("quizID").(uint), req.toInput())
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question, true))
}

// ListQuestions возвращает вопросы викторины
// GET /api/quizzes/:id/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.ListQuestions(c.Request.Context(), c.MustGet("quizID").(uint))
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionListResponse(questions, middleware.IsStaff(c)))
}

// GetQuestion возвращает вопрос с вариантами ответов
// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionService.GetQuestion(c.Request.Context(), c.MustGet("questionID").(uint))
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, middleware.IsStaff(c)))
}

// UpdateQuestion частично обновляет вопрос
// PUT /api/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var req UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.UpdateQuestionInput{Text: req.Text, Points: req.Points}
	if req.QuestionType != nil {
		t := entity.QuestionType(*req.QuestionType)
		in.Type = &t
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), c.MustGet("questionID").(uint), in)
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, true))
}

// DeleteQuestion удаляет вопрос вместе с его вариантами
// DELETE /api/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.questionService.DeleteQuestion(c.Request.Context(), c.MustGet("questionID").(uint)); err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateAnswer добавляет вариант ответа к вопросу
// POST /api/questions/:id/answers
func (h *QuestionHandler) CreateAnswer(c *gin.Context) {
	var req AnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	answer, err := h.questionService.CreateAnswer(c.Request.Context(), c.MustGet("questionID").(uint), service.AnswerInput{
		Text:      req.Text,
		IsCorrect: req.IsCorrect,
	})
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusCreated, helper.ConvertAnswer(answer, true))
}

// ListAnswers возвращает варианты ответа вопроса
// GET /api/questions/:id/answers
func (h *QuestionHandler) ListAnswers(c *gin.Context) {
	answers, err := h.questionService.ListAnswers(c.Request.Context(), c.MustGet("questionID").(uint))
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, helper.ConvertAnswers(answers, middleware.IsStaff(c)))
}

// GetAnswer возвращает вариант ответа
// GET /api/answers/:id
func (h *QuestionHandler) GetAnswer(c *gin.Context) {
	answer, err := h.questionService.GetAnswer(c.Request.Context(), c.MustGet("answerID").(uint))
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, helper.ConvertAnswer(answer, middleware.IsStaff(c)))
}

// UpdateAnswer частично обновляет вариант ответа
// PUT /api/answers/:id
func (h *QuestionHandler) UpdateAnswer(c *gin.Context) {
	var req UpdateAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	answer, err := h.questionService.UpdateAnswer(c.Request.Context(), c.MustGet("answerID").(uint), req.Text, req.IsCorrect)
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, helper.ConvertAnswer(answer, true))
}

// DeleteAnswer удаляет вариант ответа
// DELETE /api/answers/:id
func (h *QuestionHandler) DeleteAnswer(c *gin.Context) {
	if err := h.questionService.DeleteAnswer(c.Request.Context(), c.MustGet("answerID").(uint)); err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
