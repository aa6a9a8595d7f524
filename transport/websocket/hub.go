package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/wricardo/mcp-training/tictactoe/game/service"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound frames buffered per client before it is considered stalled.
	sendBufferSize = 256
)

// Frame is the wire envelope in both directions
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type inbound struct {
	client *Client
	data   []byte
}

// Client is one live WebSocket connection
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub owns every connection and is the single goroutine that calls into
// the game service. Register, unregister and inbound frames are all
// serialized through Run, so each event is processed to completion before
// the next one starts.
type Hub struct {
	service  service.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader

	// Connected clients by connection id. Owned by Run.
	clients map[string]*Client

	// Inbound frames from clients
	inbound chan inbound

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}
}

// NewHub creates a hub driving svc. allowedOrigins restricts browser
// origins; empty or "*" allows any.
func NewHub(svc service.GameService, logger *zap.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		service:    svc,
		logger:     logger,
		clients:    make(map[string]*Client),
		inbound:    make(chan inbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || lo.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.send)
			}
			h.logger.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.clients[client.id] = client
			h.logger.Debug("client registered", zap.String("conn_id", client.id), zap.Int("clients", len(h.clients)))
			h.deliver(h.service.Connect(client.id))

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.inbound:
			if _, ok := h.clients[msg.client.id]; !ok {
				continue
			}
			h.handle(msg)
		}
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ServeWS upgrades the request and attaches the connection to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) handle(msg inbound) {
	var frame Frame
	if err := json.Unmarshal(msg.data, &frame); err != nil || frame.Event == "" {
		h.logger.Debug("malformed frame", zap.String("conn_id", msg.client.id), zap.Error(err))
		h.deliver([]service.Outbound{{
			Scope:      service.ScopeConnection,
			Recipients: []string{msg.client.id},
			Event:      service.EventError,
			Payload: service.ErrorPayload{
				Code:    service.CodeUnknownEvent,
				Message: "Malformed frame",
			},
		}})
		return
	}
	h.deliver(h.service.Handle(msg.client.id, frame.Event, frame.Data))
}

// drop forgets a client and lets the service vacate its seat
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client.id]; !ok {
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	h.logger.Debug("client unregistered", zap.String("conn_id", client.id), zap.Int("clients", len(h.clients)))
	h.deliver(h.service.Disconnect(client.id))
}

// deliver writes outbounds in order. Clients whose buffers are full are
// dropped after the whole batch has been queued.
func (h *Hub) deliver(outs []service.Outbound) {
	var stalled []*Client

	for _, out := range outs {
		data, err := json.Marshal(outFrame{Event: out.Event, Data: out.Payload})
		if err != nil {
			h.logger.Error("failed to marshal outbound", zap.String("event", out.Event), zap.Error(err))
			continue
		}

		var targets []*Client
		if out.Scope == service.ScopeAll {
			targets = lo.Values(h.clients)
		} else {
			for _, id := range out.Recipients {
				if c, ok := h.clients[id]; ok {
					targets = append(targets, c)
				}
			}
		}

		for _, c := range targets {
			if lo.Contains(stalled, c) {
				continue
			}
			select {
			case c.send <- data:
			default:
				h.logger.Warn("client send buffer full, dropping", zap.String("conn_id", c.id))
				stalled = append(stalled, c)
			}
		}
	}

	for _, c := range stalled {
		h.drop(c)
	}
}

// readPump pumps frames from the WebSocket connection to the hub
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
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}

		select {
		case c.hub.inbound <- inbound{client: c, data: data}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump pumps frames from the hub to the WebSocket connection, one
// frame per WebSocket message
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Flush whatever queued up meanwhile
			n := len(c.send)
			for i := 0; i < n; i++ {
				next, ok := <-c.send
				if !ok {
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.conn.WriteMessage(websocket.TextMessage, next); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
