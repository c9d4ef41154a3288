package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/handler/dto"
	"github.com/yourusername/quiz-api/internal/service"
)

// AttemptHandler обрабатывает запросы, связанные с попытками прохождения
type AttemptHandler struct {
	attemptService *service.AttemptService
	pages          PageConfig
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService, pages PageConfig) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, pages: pages}
}

// StartAttemptRequest - запрос на начало попытки.
// Указатель отличает отсутствующий quiz_id от 0: 0 проверяется сервисом как несуществующая викторина.
type StartAttemptRequest struct {
	QuizID *uint `json:"quiz_id" binding:"required"`
}

// SubmitAttemptRequest - запрос на сдачу попытки
type SubmitAttemptRequest struct {
	QuizID  *uint                     `json:"quiz_id" binding:"required"`
	Answers []service.SubmittedAnswer `json:"answers" binding:"required"`
}

// StartAttempt начинает (или перезапускает) попытку
// POST /api/quizzes/start
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req StartAttemptRequest
	if !bindJSON(c, &req) {
		return
	}

	participant, err := h.attemptService.StartAttempt(c.Request.Context(), userID, *req.QuizID)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz started",
		"data": dto.AttemptWindowResponse{
			QuizID:    participant.QuizID,
			StartTime: participant.StartTime,
			EndTime:   participant.EndTime,
		},
	})
}

// SubmitAttempt проверяет ответы и записывает результат
// POST /api/quizzes/submit
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req SubmitAttemptRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.attemptService.SubmitAttempt(c.Request.Context(), userID, *req.QuizID, req.Answers)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz submitted",
		"data": dto.SubmissionResponse{
			QuizID:  *req.QuizID,
			Answers: result.Answers,
			Score:   result.Score,
		},
	})
}

// GetAttempt возвращает попытку текущего пользователя
// GET /api/quizzes/:id/attempt
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	participant, status, err := h.attemptService.GetAttempt(c.Request.Context(), userID, quizID)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptStatusResponse(quizID, participant, status, h.attemptService.Now()))
}

// ListParticipants возвращает участников викторины
// GET /api/quizzes/:id/participants
func (h *AttemptHandler) ListParticipants(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	page, pageSize, offset := pagination(c, h.pages)

	participants, total, err := h.attemptService.ListParticipants(c.Request.Context(), quizID, pageSize, offset)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedResponse{
		Results:  dto.NewParticipantListResponse(participants, h.attemptService.Now()),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// ExportParticipants выгружает результаты участников в CSV или Excel
// GET /api/quizzes/:id/participants/export?format=csv|xlsx
func (h *AttemptHandler) ExportParticipants(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"format": fmt.Sprintf("\"%s\" is not a valid choice.", format), "error_type": "validation_error"})
		return
	}

	quiz, participants, err := h.attemptService.ExportParticipants(c.Request.Context(), quizID)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}

	rows := exportRows(participants, h.attemptService.Now())
	filename := fmt.Sprintf("quiz_%d_participants_%s", quiz.ID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

var exportHeaders = []string{"ID участника", "Пользователь", "Email", "Начало", "Окончание", "Очки", "Статус"}

type exportRow struct {
	participantID uint
	username      string
	email         string
	start         time.Time
	end           time.Time
	score         *int
	status        entity.AttemptStatus
}

func exportRows(participants []entity.Participant, now time.Time) []exportRow {
	rows := make([]exportRow, len(participants))
	for i := range participants {
		p := &participants[i]
		row := exportRow{
			participantID: p.ID,
			start:         p.StartTime,
			end:           p.EndTime,
			score:         p.Score,
			status:        p.Status(now),
		}
		if p.User != nil {
			row.username = p.User.Username
			row.email = p.User.Email
		}
		rows[i] = row
	}
	return rows
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *AttemptHandler) exportCSV(c *gin.Context, rows []exportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		score := ""
		if r.score != nil {
			score = strconv.Itoa(*r.score)
		}
		writer.Write([]string{
			strconv.FormatUint(uint64(r.participantID), 10),
			sanitizeForExcel(r.username),
			sanitizeForExcel(r.email),
			r.start.Format(time.RFC3339),
			r.end.Format(time.RFC3339),
			score,
			string(r.status),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *AttemptHandler) exportXLSX(c *gin.Context, rows []exportRow, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Участники"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AttemptHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "error_type": "internal_error"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, hdr := range exportHeaders {
		headers[i] = hdr
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2
		var score interface{}
		if r.score != nil {
			score = *r.score
		}
		row := []interface{}{
			r.participantID,
			sanitizeForExcel(r.username),
			sanitizeForExcel(r.email),
			r.start.Format(time.RFC3339),
			r.end.Format(time.RFC3339),
			score,
			string(r.status),
		}
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
			log.Printf("[AttemptHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AttemptHandler] Ошибка при Flush: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "error_type": "internal_error"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
