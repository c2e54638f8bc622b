package interfaces

import (
	"net/http"
	"time"

	"github.com/ternarybob/docify/internal/models"
)

// StatusEvent is broadcast to websocket clients when a document changes
// status.
type StatusEvent struct {
	DocumentID string                `json:"documentId"`
	Status     models.DocumentStatus `json:"status"`
	Message    string                `json:"message,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// EventService fans document status transitions out to connected clients.
type EventService interface {
	// PublishStatus broadcasts a status transition. Never blocks the
	// caller; slow clients are dropped.
	PublishStatus(event StatusEvent)

	// HandleWebSocket upgrades an HTTP request to a websocket client
	// connection.
	HandleWebSocket(w http.ResponseWriter, r *http.Request)

	// ClientCount returns the number of connected clients.
	ClientCount() int

	// Close disconnects all clients.
	Close() error
}
