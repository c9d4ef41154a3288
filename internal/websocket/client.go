package websocket

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, отведенное на запись сообщения клиенту
	writeWait = 10 * time.Second

	// Время ожидания следующего pong от клиента
	pongWait = 30 * time.Second

	// Пинги отправляются чуть чаще, чем истекает pongWait
	pingPeriod = (pongWait * 9) / 10

	// Клиент ничего не шлет, кроме служебных кадров
	maxMessageSize = 512
)

// ClientConfig содержит настройки соединения клиента
type ClientConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultClientConfig возвращает конфигурацию по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		WriteWait:      writeWait,
		PongWait:       pongWait,
		PingInterval:   pingPeriod,
		MaxMessageSize: maxMessageSize,
		SendBuffer:     64,
	}
}

// Client - подписчик на события одной викторины
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	cfg  ClientConfig

	ConnectionID string
	UserID       uint
	QuizID       uint
}

func newClient(hub *Hub, conn *websocket.Conn, userID, quizID uint, cfg ClientConfig) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, cfg.SendBuffer),
		cfg:          cfg,
		ConnectionID: uuid.New().String(),
		UserID:       userID,
		QuizID:       quizID,
	}
}

// readPump держит соединение живым и обнаруживает его закрытие.
// Входящие сообщения клиента игнорируются.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS Client %s] Неожиданное закрытие (UserID: %d): %v", c.ConnectionID, c.UserID, err)
			}
			return
		}
	}
}

// writePump отправляет события из send и пингует клиента
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// Хаб закрыл канал клиента
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS Client %s] Ошибка записи (UserID: %d): %v", c.ConnectionID, c.UserID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
