package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Envelope is the wire shape of every push event.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Publisher is what services see: fire-and-forget delivery of one event to
// one user's room. Implementations must never block the caller.
type Publisher interface {
	PublishToUser(userID int, eventType string, payload interface{})
}

// Hub fans push events out to connected clients, one room per user id.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func userRoom(userID int) string {
	return fmt.Sprintf("user_%d", userID)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()
			h.logger.Info("realtime client registered", slog.String("room", client.room))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info("realtime client unregistered", slog.String("room", client.room))
		}
	}
}

// PublishToUser delivers one event to every connection of the given user.
// Slow consumers are skipped rather than blocking the hub.
func (h *Hub) PublishToUser(userID int, eventType string, payload interface{}) {
	message, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal push event",
			slog.String("type", eventType), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[userRoom(userID)]
	if !ok {
		return
	}
	for client := range clients {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- message:
		default:
			h.logger.Warn("push channel full, dropping event",
				slog.String("room", client.room), slog.String("type", eventType))
		}
		client.mu.Unlock()
	}
}
