package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// MessageType identifies a server-to-client message.
type MessageType string

const (
	MessageRender MessageType = "render"
	MessageError  MessageType = "error"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type  MessageType `json:"type"`
	Name  string      `json:"name,omitempty"`
	HTML  string      `json:"html,omitempty"`
	Error string      `json:"error,omitempty"`
}

// EventMessage is sent by browsers to fire an event.
type EventMessage struct {
	Event string `json:"event"`
	Args  []any  `json:"args,omitempty"`
}

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// hub tracks connected browsers.
type hub struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

func newHub(checkOrigin func(*http.Request) bool) *hub {
	return &hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *hub) upgrade(w http.ResponseWriter, req *http.Request) (*client, error) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, err
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c, nil
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// broadcast sends msgs to every client, dropping clients that fail.
func (h *hub) broadcast(msgs []Message) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		for _, c := range clients {
			if err := c.send(data); err != nil {
				h.remove(c)
			}
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
