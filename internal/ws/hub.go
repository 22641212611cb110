package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

// Event types pushed to connected clients
const (
	EventStockUpdate     = "stock_update"
	EventPurchaseCreated = "purchase_created"
)

// Event is the JSON envelope every broadcast uses
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	User    *Actor      `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Actor identifies who triggered the event
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// broadcastQueue is how many encoded events may wait for Run
const broadcastQueue = 64

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, broadcastQueue),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.WithField("clients", h.ClientCount()).Debug("New WS Client Connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish encodes the event and queues it for Run without blocking the
// caller. The event is dropped when the hub is nil or the queue is full.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).WithField("type", event.Type).Error("encode ws event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		log.WithField("type", event.Type).Warn("ws broadcast queue full, dropping event")
	}
}
