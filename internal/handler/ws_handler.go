package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/quiz-api/internal/middleware"
	"github.com/yourusername/quiz-api/internal/service"
	"github.com/yourusername/quiz-api/internal/websocket"
)

// WSHandler подключает владельцев и сотрудников к потоку событий викторины
type WSHandler struct {
	hub         *websocket.Hub
	quizService *service.QuizService
	upgrader    gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket.
// Пустой Origin (не браузерный клиент) пропускается всегда.
func NewWSHandler(hub *websocket.Hub, quizService *service.QuizService, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &WSHandler{
		hub:         hub,
		quizService: quizService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
				return false
			},
		},
	}
}

// HandleQuizEvents поднимает соединение для событий одной викторины
// GET /ws/quizzes/:id?token=...
func (h *WSHandler) HandleQuizEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		handleError(c, "WSHandler", err)
		return
	}
	if !middleware.IsStaff(c) && !quiz.IsOwnedBy(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action", "error_type": "forbidden"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		log.Printf("WebSocket: upgrade failed for UserID %d: %v", userID, err)
		return
	}

	if !h.hub.ServeClient(conn, userID, quizID) {
		log.Printf("WebSocket: hub stopped, closing connection for UserID %d", userID)
		conn.Close()
		return
	}
	log.Printf("WebSocket: UserID %d subscribed to quiz %d", userID, quizID)
}
