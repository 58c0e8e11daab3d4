package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/homeservice-backend/internal/goroutine"
	"github.com/ignatzorin/homeservice-backend/internal/logger"
	"github.com/ignatzorin/homeservice-backend/internal/models"
)

// Hub управляет всеми WebSocket клиентами и доставляет уведомления.
// Сохранение уведомлений в БД выполняет NotificationService до доставки,
// хаб отвечает только за fan-out по подключениям пользователя.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Push доставляет уведомление всем подключениям пользователя.
// Сообщение следует контракту WebSocket API: поле "type" содержит тип
// события, "data" — само уведомление.
func (h *Hub) Push(userID uuid.UUID, notification *models.Notification) {
	payload, err := json.Marshal(map[string]any{
		"type": notification.Type,
		"data": notification,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("ws: не удалось сериализовать уведомление")
		return
	}

	h.broadcast <- message{userID: userID, payload: payload}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Медленного клиента закрываем, не блокируя остальных.
			c := client
			goroutine.SafeGo(func() { c.Close() })
		}
	}
}
