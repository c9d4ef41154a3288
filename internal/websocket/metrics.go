package websocket

import (
	"sync"
	"time"
)

// HubMetrics - счетчики хаба событий
type HubMetrics struct {
	totalConnections  int64
	activeConnections int64
	eventsPublished   int64
	messagesSent      int64
	eventsDropped     int64
	slowClientsKicked int64
	messageTypeCounts map[string]int64
	startTime         time.Time

	mu sync.RWMutex
}

// NewHubMetrics создает новый экземпляр метрик
func NewHubMetrics() *HubMetrics {
	return &HubMetrics{
		messageTypeCounts: make(map[string]int64),
		startTime:         time.Now(),
	}
}

func (m *HubMetrics) connected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
}

func (m *HubMetrics) disconnected(kicked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
	if kicked {
		m.slowClientsKicked++
	}
}

func (m *HubMetrics) published(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished++
	m.messageTypeCounts[eventType]++
}

func (m *HubMetrics) sent(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesSent += int64(n)
}

func (m *HubMetrics) dropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsDropped++
}

// Snapshot возвращает копию метрик для отдачи наружу
func (m *HubMetrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[string]int64, len(m.messageTypeCounts))
	for k, v := range m.messageTypeCounts {
		byType[k] = v
	}
	return map[string]interface{}{
		"total_connections":   m.totalConnections,
		"active_connections":  m.activeConnections,
		"events_published":    m.eventsPublished,
		"messages_sent":       m.messagesSent,
		"events_dropped":      m.eventsDropped,
		"slow_clients_kicked": m.slowClientsKicked,
		"events_by_type":      byType,
		"uptime_seconds":      int64(time.Since(m.startTime).Seconds()),
	}
}
