package utility

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Simple Hub to hold active connections: Map[RunID] -> Connection
var (
	Clients   = make(map[string]*websocket.Conn)
	ClientsMu sync.Mutex // Mutex to prevent race conditions
	Upgrader  = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Allow CORS for development
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// RegisterClient attaches the connection that follows a pipeline run.
func RegisterClient(runID string, conn *websocket.Conn) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	Clients[runID] = conn
	log.Info().Str("run_id", runID).Msg("WebSocket Client Connected")
}

// UnregisterClient forgets the run's connection (run finished or tab closed).
func UnregisterClient(runID string) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	if _, ok := Clients[runID]; ok {
		delete(Clients, runID)
		log.Info().Str("run_id", runID).Msg("WebSocket Client Disconnected")
	}
}

// SendToRun writes v as JSON to the run's connection. A failed write drops the
// client; the run itself keeps going. Reports whether the message was sent.
func SendToRun(runID string, v any) bool {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()

	conn, ok := Clients[runID]
	if !ok {
		return false
	}
	if err := conn.WriteJSON(v); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("Failed to send WS message, removing client")
		conn.Close()
		delete(Clients, runID)
		return false
	}
	return true
}

// ConnectedRuns returns how many runs currently have a listener.
func ConnectedRuns() int {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	return len(Clients)
}
