package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/onnwee/forcegraph/internal/apierr"
	"github.com/onnwee/forcegraph/internal/layout"
	"github.com/onnwee/forcegraph/internal/logger"
	"github.com/onnwee/forcegraph/internal/metrics"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Frames queued per client before it is dropped
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware handles origin checks
		return true
	},
}

// Message types sent on the stream.
const (
	MessageGraph        = "graph"
	MessagePositions    = "positions"
	MessageGraphChanged = "graph_changed"
)

// WebSocketMessage represents a message sent to clients
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// PositionDoc is one node position on the wire.
type PositionDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionsPayload is broadcast after every layout tick.
type PositionsPayload struct {
	Tick      uint64                        `json:"tick"`
	Positions map[layout.NodeID]PositionDoc `json:"positions"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active stream clients and fans frames out to
// them. A client whose buffer is full is disconnected rather than stalling
// the layout loop.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	source GraphSource
	count  atomic.Int64
	mu     sync.Mutex
}

// NewHub creates a hub that greets each new client with the graph read
// from source.
func NewHub(source GraphSource) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		source:     source,
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Run is the hub's main loop. When ctx is done every client is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			h.mu.Unlock()
			metrics.WebSocketConnections.Inc()
			logger.Info("stream client connected", "total_clients", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				h.removeLocked(client)
				logger.Info("stream client disconnected", "total_clients", len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.WebSocketMessagesSent.Inc()
				default:
					h.removeLocked(client)
					metrics.WebSocketDropped.Inc()
					logger.Warn("stream client too slow, dropped")
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
	metrics.WebSocketConnections.Dec()
}

// BroadcastPositions queues a positions frame for every client. It never
// blocks: with no clients it does nothing and when the queue is full the
// frame is skipped since the next tick supersedes it.
func (h *Hub) BroadcastPositions(tick uint64, positions map[layout.NodeID]layout.Point) {
	if h.ClientCount() == 0 {
		return
	}
	out := make(map[layout.NodeID]PositionDoc, len(positions))
	for id, p := range positions {
		out[id] = PositionDoc{X: p.X, Y: p.Y}
	}
	h.publish(WebSocketMessage{
		Type:    MessagePositions,
		Payload: PositionsPayload{Tick: tick, Positions: out},
	})
}

// BroadcastGraphChanged tells clients the node or edge set changed so they
// can refetch /api/graph.
func (h *Hub) BroadcastGraphChanged(version uint64) {
	if h.ClientCount() == 0 {
		return
	}
	h.publish(WebSocketMessage{
		Type:    MessageGraphChanged,
		Payload: map[string]uint64{"version": version},
	})
}

func (h *Hub) publish(msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal stream message", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Debug("stream broadcast queue full, frame skipped", "type", msg.Type)
	}
}

// ServeWS upgrades the connection, sends the current graph and registers
// the client for position frames.
// GET /api/stream
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		apierr.WriteErrorWithContext(w, r, apierr.SystemUnavailable("Stream is shutting down"))
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}

	doc, version := h.source.ExportVersion()
	initial, err := json.Marshal(WebSocketMessage{
		Type:    MessageGraph,
		Payload: GraphResponse{Version: version, Document: doc},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to marshal initial graph", "error", err)
		conn.Close()
		return
	}
	client.send <- initial

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so control frames are handled. Clients
// are not expected to send data.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket unexpected close", "error", err)
			}
			return
		}
	}
}

// writePump sends one JSON message per frame and keeps the peer alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
