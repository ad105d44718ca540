package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// Notification types pushed to clients
const (
	EventConnected        = "connected"
	EventFileFailed       = "file.failed"
	EventSessionCompleted = "session.completed"
)

const (
	sendBuffer = 32
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Event is the JSON frame sent to every connected client
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// FileFailedData is the payload of a file.failed event
type FileFailedData struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// SessionCompletedData is the payload of a session.completed event
type SessionCompletedData struct {
	SessionID string              `json:"sessionId"`
	Directory string              `json:"directory"`
	Printer   string              `json:"printer"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failures  []model.PrintResult `json:"failures"`
	Duration  string              `json:"duration"`
}

// Handler broadcasts print session notifications to websocket clients
type Handler struct {
	upgrader websocket.Upgrader
	logger   outbound.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func NewHandler(logger outbound.Logger) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// browsers send Origin; other clients usually do not
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// HandleConnection upgrades the request and registers the client
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Error upgrading to WebSocket", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if frame, err := json.Marshal(Event{Type: EventConnected, Timestamp: time.Now()}); err == nil {
		c.send <- frame
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("Notification client connected", "remote", r.RemoteAddr, "clients", count)

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast queues the event for every client. A client whose buffer is
// full is disconnected.
func (h *Handler) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	frame, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode notification", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow notification client")
		h.remove(c)
	}
}

// SessionHandlers turns session events into notifications
func (h *Handler) SessionHandlers() inbound.SessionHandlers {
	return inbound.SessionHandlers{
		OnFailure: func(result model.PrintResult) {
			h.Broadcast(Event{Type: EventFileFailed, Data: FileFailedData{
				Path:   result.Path,
				Status: string(result.Status),
				Detail: result.Detail,
			}})
		},
		OnComplete: func(report *model.SessionReport) {
			h.Broadcast(Event{Type: EventSessionCompleted, Data: SessionCompletedData{
				SessionID: report.ID,
				Directory: report.Directory,
				Printer:   report.Printer,
				Total:     len(report.Results),
				Succeeded: report.Succeeded(),
				Failures:  report.Failures(),
				Duration:  report.Duration().String(),
			}})
		},
	}
}

// ClientCount returns the number of connected clients
func (h *Handler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Handler) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(c)
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for close and pong frames
func (h *Handler) readPump(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket error", "error", err)
			}
			return
		}
	}
}

func (h *Handler) remove(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if present {
		close(c.send)
	}
	c.once.Do(func() {
		// let writePump send the close frame before the socket goes
		time.AfterFunc(writeWait, func() { c.conn.Close() })
	})
}

func (h *Handler) Cleanup() {
	h.logger.Info("Cleaning up WebSocket handler resources...")

	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}

	h.logger.Info("WebSocket handler cleanup complete")
}
