package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/xelth-com/eckscalego/internal/models"
)

// Hub maintains the set of connected dashboard clients and fans weighing
// events out to all of them.
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Outbound event fan-out
	broadcast chan []byte

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[string]*Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
			}
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🖥️ Dashboard connected: %s", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("📴 Dashboard disconnected: %s", client.ID)

		case message := <-h.broadcast:
			h.mu.RLock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop, readPump cleans up
					log.Printf("WS send buffer full for %s, dropping", id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(message interface{}) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	select {
	case h.broadcast <- jsonMsg:
	default:
	}
}

// WeighingChanged implements the engine's notifier: pushes the record's
// current state to all dashboards.
func (h *Hub) WeighingChanged(w *models.TruckWeighing) {
	h.Broadcast(map[string]interface{}{
		"type":     "WEIGHING_UPDATE",
		"weighing": w,
	})
}

// LiveWeight pushes a raw scale reading to all dashboards.
func (h *Hub) LiveWeight(scaleID *int64, weight float64) {
	h.Broadcast(map[string]interface{}{
		"type":     "LIVE_WEIGHT",
		"scale_id": scaleID,
		"weight":   weight,
	})
}
