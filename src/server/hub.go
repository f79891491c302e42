package server

import (
	"encoding/json"
	"net/http"

	"market-structure/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. Everything handed to a client
// channel is a snapshot, never the live served state, so writePump can
// serialize it without holding stateMutex.
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connCount.Add(1)

			// Send initial state on connect
			s.stateMutex.RLock()
			snapshot := s.latestState.Snapshot()
			s.stateMutex.RUnlock()
			if snapshot != nil {
				client.send <- snapshot
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.connCount.Add(-1)
				close(client.send)
			}

		case message := <-s.broadcast:
			// Served state is owned by UpdateReports; the Hub only fans out.
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					// This ensures reliable 24/7 operation by pruning dead/slow consumers
					delete(s.clients, client)
					s.connCount.Add(-1)
					close(client.send)
				}
			}

		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				s.connCount.Add(-1)
				close(client.send)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast hands a typed snapshot to the Hub queue. The snapshot is built by
// the caller so the Hub loop never does data processing. After Stop the
// message is dropped.
func (s *FastAPIServer) Broadcast(state *models.MLatestData) {
	if state == nil {
		return
	}
	state.Type = "UPDATE"

	// With a large buffer, blocking here is rare.
	select {
	case s.broadcast <- state:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MLatestData, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	s.stateMutex.RLock()
	response := s.subscribeResponse(cmd.Symbols)
	s.stateMutex.RUnlock()

	// Send response to client
	// Use select to avoid blocking if client's send buffer is full
	select {
	case client.send <- response:
	default:
		// Client buffer full, drop the snapshot. The next broadcast catches up.
	}
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

// subscribeResponse returns the current state filtered down to the requested
// symbols. An empty symbol list means everything. The returned map is always
// a copy, never the served state itself.
func (s *FastAPIServer) subscribeResponse(symbols []string) *models.MLatestData {
	filtered := make(map[string]models.MStructureReport)
	if len(symbols) == 0 {
		for sym, report := range s.latestState.Reports {
			filtered[sym] = report
		}
	} else {
		for _, sym := range symbols {
			if report, exists := s.latestState.Reports[sym]; exists {
				filtered[sym] = report
			}
		}
	}

	return &models.MLatestData{
		Type:              "INITIAL",
		Reports:           filtered,
		Timestamp:         s.latestState.Timestamp,
		ProcessingMetrics: s.latestState.ProcessingMetrics,
	}
}
