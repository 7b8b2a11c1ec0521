package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nabilh59/smart-meter/internal/audit"
	"github.com/nabilh59/smart-meter/internal/billing"
	"github.com/nabilh59/smart-meter/internal/grid"
	"github.com/nabilh59/smart-meter/internal/meter"
)

const sendBuffer = 16

// Hub owns every live connection and orchestrates the meter registry,
// billing engine and grid state across the connection lifecycle.
type Hub struct {
	store  *meter.Store
	engine *billing.Engine
	grid   *grid.State
	audit  audit.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

// Client is one live websocket connection.
type Client struct {
	ID   string
	Conn *websocket.Conn

	Send chan []byte
	Done chan struct{}

	closeOnce sync.Once
}

// NewHub wires the hub to its collaborators.
func NewHub(store *meter.Store, engine *billing.Engine, state *grid.State, auditLog audit.Logger) *Hub {
	return &Hub{
		store:   store,
		engine:  engine,
		grid:    state,
		audit:   auditLog,
		clients: make(map[string]*Client),
	}
}

// Store exposes the meter registry for read-only projections.
func (h *Hub) Store() *meter.Store {
	return h.store
}

// Engine exposes the billing engine for read-only projections.
func (h *Hub) Engine() *billing.Engine {
	return h.engine
}

// Grid exposes the shared grid state.
func (h *Hub) Grid() *grid.State {
	return h.grid
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection runs the full lifecycle of one upgraded connection
// and returns when the client goes away. The caller owns the HTTP
// handler goroutine, so the read pump runs inline.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	client := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	connectedClients.Inc()

	go h.writePump(client)

	h.onConnect(client)
	h.readPump(client)
}

func (h *Hub) readPump(client *Client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, client.ID)
		h.mu.Unlock()
		connectedClients.Dec()

		h.onDisconnect(client)
		client.close()
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(client, message)
	}
}

func (h *Hub) writePump(client *Client) {
	for {
		select {
		case message := <-client.Send:
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.audit.Log(client.ID, audit.EventSendFailure)
				return
			}
		case <-client.Done:
			return
		}
	}
}

// push queues a message for one client. Failure to enqueue is logged
// as a send failure and never propagated; sends are fire-and-forget.
func (h *Hub) push(client *Client, event string, data interface{}) {
	msg := mustEnvelope(event, data)
	select {
	case client.Send <- msg:
	case <-client.Done:
		h.audit.Log(client.ID, audit.EventSendFailure)
	default:
		h.audit.Log(client.ID, audit.EventSendFailure)
	}
}

// BroadcastGridStatus replaces the grid flag and fans the new status
// out to every live client. Delivery is best-effort per client; one
// slow or dead connection never blocks the rest. A client connecting
// mid-broadcast sees whichever flag value its own connect handler read.
func (h *Hub) BroadcastGridStatus(status grid.Status) {
	h.grid.Set(status)
	msg := grid.Message(status, time.Now())

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.push(c, EventGridStatus, msg)
	}
	gridBroadcasts.WithLabelValues(string(status)).Inc()
}

// SetDown flips the grid DOWN and re-broadcasts even when already down.
func (h *Hub) SetDown() {
	h.BroadcastGridStatus(grid.StatusDown)
}

// SetUp flips the grid UP and re-broadcasts even when already up.
func (h *Hub) SetUp() {
	h.BroadcastGridStatus(grid.StatusUp)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.Done)
	})
}
