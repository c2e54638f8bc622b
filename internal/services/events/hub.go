// -------------------------------------------------------------------------
// Websocket hub broadcasting document status transitions to connected
// clients. Slow or broken clients are dropped rather than blocking the
// pipeline.
// -------------------------------------------------------------------------

package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsMessage is the envelope for every frame sent to clients.
type wsMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type helloPayload struct {
	ServerInstanceID string `json:"serverInstanceId"`
	Timestamp        string `json:"timestamp"`
}

// Hub implements the EventService over gorilla websockets.
type Hub struct {
	logger           arbor.ILogger
	mu               sync.RWMutex
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	serverInstanceID string
}

var _ interfaces.EventService = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger arbor.ILogger) *Hub {
	h := &Hub{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("Event hub initialized")
	return h
}

// HandleWebSocket upgrades the request and holds the connection open until
// the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("Websocket client connected (total: %d)", clientCount)

	h.sendTo(conn, wsMessage{
		Type: "hello",
		Payload: helloPayload{
			ServerInstanceID: h.serverInstanceID,
			Timestamp:        time.Now().Format(time.RFC3339),
		},
	})

	defer func() {
		h.drop(conn)
		h.logger.Debug().Msgf("Websocket client disconnected (remaining: %d)", h.ClientCount())
	}()

	// Read loop keeps the connection alive and detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("Websocket error")
			}
			return
		}
	}
}

// PublishStatus broadcasts a status transition to every client. The write
// happens on a background goroutine so pipeline stages never wait on
// client sockets.
func (h *Hub) PublishStatus(event interfaces.StatusEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	common.SafeGo(h.logger, "status-broadcast", func() {
		h.broadcast(wsMessage{
			Type:    "document_status",
			Payload: event,
		})
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() error {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.clientMutex = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	return nil
}

func (h *Hub) broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal websocket message")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range conns {
		mutex := mutexes[i]
		mutex.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Dropping slow or broken websocket client")
			h.drop(conn)
		}
	}
}

func (h *Hub) sendTo(conn *websocket.Conn, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal websocket message")
		return
	}

	h.mu.RLock()
	mutex := h.clientMutex[conn]
	h.mu.RUnlock()

	if mutex == nil {
		return
	}

	mutex.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteMessage(websocket.TextMessage, data)
	mutex.Unlock()

	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send websocket message")
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	delete(h.clientMutex, conn)
	h.mu.Unlock()

	conn.Close()
}
