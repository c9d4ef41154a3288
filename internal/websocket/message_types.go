package websocket

import (
	"encoding/json"
	"time"
)

// Типы событий викторины, рассылаемых подписчикам
const (
	// ATTEMPT_STARTED сообщает о начале (или перезапуске) попытки
	ATTEMPT_STARTED = "ATTEMPT_STARTED"

	// ATTEMPT_SUBMITTED сообщает о сдаче попытки с результатом
	ATTEMPT_SUBMITTED = "ATTEMPT_SUBMITTED"

	// FEEDBACK_CREATED сообщает о новом отзыве
	FEEDBACK_CREATED = "FEEDBACK_CREATED"
)

// Event - конверт события, уходящий клиенту и в кластерный канал
type Event struct {
	Type       string          `json:"type"`
	QuizID     uint            `json:"quiz_id"`
	Data       json.RawMessage `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
	InstanceID string          `json:"instance_id,omitempty"`
}

// NewEvent сериализует data и собирает событие
func NewEvent(eventType string, quizID uint, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		QuizID:    quizID,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	}, nil
}
