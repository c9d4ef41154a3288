package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/quiz-api/internal/handler/dto"
	"github.com/yourusername/quiz-api/internal/service"
)

// FeedbackHandler обрабатывает запросы, связанные с отзывами
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	pages           PageConfig
}

// NewFeedbackHandler создает новый обработчик отзывов
func NewFeedbackHandler(feedbackService *service.FeedbackService, pages PageConfig) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService, pages: pages}
}

// FeedbackRequest - оценка и комментарий
type FeedbackRequest struct {
	Rating  *int   `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"max=2000"`
}

// SubmitFeedback оставляет отзыв о викторине
// POST /api/quizzes/:id/feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	feedback, err := h.feedbackService.SubmitFeedback(c.Request.Context(), userID, quizID, *req.Rating, req.Comment)
	if err != nil {
		handleError(c, "FeedbackHandler", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewFeedbackResponse(feedback))
}

// ListFeedback возвращает отзывы о викторине
// GET /api/quizzes/:id/feedback
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	page, pageSize, offset := pagination(c, h.pages)

	feedbacks, total, err := h.feedbackService.ListFeedback(c.Request.Context(), quizID, pageSize, offset)
	if err != nil {
		handleError(c, "FeedbackHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.PaginatedResponse{
		Results:  dto.NewFeedbackListResponse(feedbacks),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetFeedback возвращает отзыв
// GET /api/feedback/:id
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	feedback, err := h.feedbackService.GetFeedback(c.Request.Context(), c.MustGet("feedbackID").(uint))
	if err != nil {
		handleError(c, "FeedbackHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedbackResponse(feedback))
}

// UpdateFeedback меняет свой отзыв
// PUT /api/feedback/:id
func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	feedback, err := h.feedbackService.UpdateFeedback(c.Request.Context(), userID, c.MustGet("feedbackID").(uint), *req.Rating, req.Comment)
	if err != nil {
		handleError(c, "FeedbackHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedbackResponse(feedback))
}

// DeleteFeedback удаляет свой отзыв
// DELETE /api/feedback/:id
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.feedbackService.DeleteFeedback(c.Request.Context(), userID, c.MustGet("feedbackID").(uint)); err != nil {
		handleError(c, "FeedbackHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
