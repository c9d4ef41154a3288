package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HubConfig содержит настройки хаба событий
type HubConfig struct {
	// Clustered включает рассылку через PubSubProvider между инстансами
	Clustered       bool
	Channel         string
	InstanceID      string
	BroadcastBuffer int
	Client          ClientConfig
}

// Hub раздает события викторин подключенным клиентам, сгруппированным по quiz_id
type Hub struct {
	cfg    HubConfig
	pubsub PubSubProvider

	rooms      map[uint]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
	done       chan struct{}
	metrics    *HubMetrics

	mu sync.RWMutex
}

// NewHub создает хаб. pubsub может быть nil в одиночном режиме.
func NewHub(cfg HubConfig, pubsub PubSubProvider) *Hub {
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = 256
	}
	if cfg.Client.SendBuffer <= 0 {
		cfg.Client = DefaultClientConfig()
	}
	if pubsub == nil {
		pubsub = &NoOpPubSub{}
		cfg.Clustered = false
	}
	return &Hub{
		cfg:        cfg,
		pubsub:     pubsub,
		rooms:      make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, cfg.BroadcastBuffer),
		done:       make(chan struct{}),
		metrics:    NewHubMetrics(),
	}
}

// Run обрабатывает регистрацию клиентов и доставку событий до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	if h.cfg.Clustered {
		go h.listenCluster(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			log.Printf("[WS Hub] Остановлен (instance %s)", h.cfg.InstanceID)
			return
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.QuizID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.QuizID] = room
			}
			room[c] = struct{}{}
			h.mu.Unlock()
			h.metrics.connected()
		case c := <-h.unregister:
			h.remove(c)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// PublishQuizEvent отправляет событие подписчикам викторины.
// В кластерном режиме событие уходит в канал Pub/Sub и возвращается во все инстансы.
func (h *Hub) PublishQuizEvent(quizID uint, eventType string, data interface{}) {
	event, err := NewEvent(eventType, quizID, data)
	if err != nil {
		log.Printf("[WS Hub] Ошибка сериализации события %s: %v", eventType, err)
		return
	}
	event.InstanceID = h.cfg.InstanceID
	h.metrics.published(eventType)

	if h.cfg.Clustered {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("[WS Hub] Ошибка сериализации события %s: %v", eventType, err)
			return
		}
		err = h.pubsub.Publish(h.cfg.Channel, payload)
		if err == nil {
			return
		}
		log.Printf("[WS Hub] Публикация в кластер не удалась, доставляем локально: %v", err)
	}

	h.enqueue(event)
}

// ServeClient регистрирует соединение и запускает его pumps.
// Возвращает false, если хаб уже остановлен.
func (h *Hub) ServeClient(conn *websocket.Conn, userID, quizID uint) bool {
	c := newClient(h, conn, userID, quizID, h.cfg.Client)
	if !h.add(c) {
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Metrics возвращает снимок счетчиков хаба
func (h *Hub) Metrics() map[string]interface{} {
	return h.metrics.Snapshot()
}

// RoomCount возвращает число викторин с подписчиками
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientCount возвращает число подписчиков викторины
func (h *Hub) ClientCount(quizID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[quizID])
}

func (h *Hub) enqueue(event *Event) {
	select {
	case h.broadcast <- event:
	default:
		h.metrics.dropped()
		log.Printf("[WS Hub] Буфер рассылки переполнен, событие %s для викторины #%d отброшено", event.Type, event.QuizID)
	}
}

func (h *Hub) listenCluster(ctx context.Context) {
	messages, err := h.pubsub.Subscribe(ctx, h.cfg.Channel)
	if err != nil {
		log.Printf("[WS Hub] Не удалось подписаться на канал %s: %v", h.cfg.Channel, err)
		return
	}
	for payload := range messages {
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Printf("[WS Hub] Некорректное событие из кластера: %v", err)
			continue
		}
		h.enqueue(&event)
	}
}

func (h *Hub) deliver(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS Hub] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.rooms[event.QuizID] {
		select {
		case c.send <- payload:
			sent++
		default:
			// Медленный клиент: отключаем
			h.removeLocked(c, true)
		}
	}
	h.metrics.sent(sent)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, false)
}

func (h *Hub) removeLocked(c *Client, kicked bool) {
	room, ok := h.rooms[c.QuizID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	h.metrics.disconnected(kicked)
	if len(room) == 0 {
		delete(h.rooms, c.QuizID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for quizID, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, quizID)
	}
}
