package service

import "log"

// EventPublisher рассылает события викторины подписчикам (websocket.Hub)
type EventPublisher interface {
	PublishQuizEvent(quizID uint, eventType string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) PublishQuizEvent(quizID uint, eventType string, data interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		log.Println("[Events] Публикатор событий не настроен, события не рассылаются")
		return noopPublisher{}
	}
	return p
}
