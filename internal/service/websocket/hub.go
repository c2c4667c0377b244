package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"detectwidget/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single write to a peer.
	writeWait = 10 * time.Second
	// sendBuffer is the per-connection queue; a peer that falls this far
	// behind is dropped.
	sendBuffer = 16
	// notifyBuffer is the queue between Notify and the Run loop.
	notifyBuffer = 256
)

// Event is pushed to the pages of one session.
type Event struct {
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

// LoadingEvent reports the loading indicator state.
func LoadingEvent(visible bool) Event {
	return Event{Type: "loading", Visible: visible}
}

type client struct {
	conn    *websocket.Conn
	session string
	send    chan []byte
}

// writePump owns all writes to the connection and closes it when send is
// closed or a write fails.
func (c *client) writePump(logger *logger.Logger) {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Error("Error sending message: %v", err)
			return
		}
	}
}

type notification struct {
	session string
	message []byte
}

// HubService fans events out to the websocket connections of a session.
// Run only queues messages; every connection has its own writer goroutine,
// so a stalled peer never holds up other sessions.
type HubService struct {
	clients    map[*websocket.Conn]*client
	notify     chan notification
	register   chan *client
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]*client),
		notify:     make(chan notification, notifyBuffer),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn, c := range h.clients {
				close(c.send)
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c.conn] = c
			total := len(h.clients)
			h.mutex.Unlock()
			go c.writePump(h.logger)
			h.logger.Info("Client connected. Total: %d", total)

		case conn := <-h.unregister:
			h.mutex.Lock()
			if c, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				close(c.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client disconnected. Total: %d", total)

		case n := <-h.notify:
			h.mutex.Lock()
			for conn, c := range h.clients {
				if c.session != n.session {
					continue
				}
				select {
				case c.send <- n.message:
				default:
					h.logger.Warning("Dropping slow client")
					delete(h.clients, conn)
					close(c.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *HubService) Register(conn *websocket.Conn, session string) {
	c := &client{conn: conn, session: session, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
	}
}

func (h *HubService) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Notify queues event for every connection of session and never blocks.
// Events for sessions without connections, or arriving while the queue is
// full, are dropped.
func (h *HubService) Notify(session string, event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding event: %v", err)
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.notify <- notification{session: session, message: message}:
	default:
		h.logger.Warning("Event queue full, dropping %s event", event.Type)
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
