package server

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"dynastyglobe/logging"
	"dynastyglobe/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// SelectData is the payload of a client select message.
type SelectData struct {
	Key string `json:"key"`
}

// inbound is a client message with its payload left raw.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	send     chan Message
	limiter  *rate.Limiter
	onSelect func(key string) error

	// mu guards send against the hub closing it while readPump replies.
	mu     sync.Mutex
	closed bool
}

// NewClient creates a client with a random ID. onSelect handles select
// messages that pass the rate limiter.
func NewClient(hub *Hub, conn *websocket.Conn, limiter *rate.Limiter, onSelect func(key string) error) *Client {
	return &Client{
		id:       uuid.NewString(),
		hub:      hub,
		conn:     conn,
		send:     make(chan Message, 256),
		limiter:  limiter,
		onSelect: onSelect,
	}
}

// ID returns the client identifier.
func (c *Client) ID() string {
	return c.id
}

// Start registers the client and begins reading and writing.
func (c *Client) Start() {
	select {
	case c.hub.register <- c:
	case <-time.After(writeWait):
		logging.Warn().Str("client", c.ID()).Msg("websocket hub not running, closing client")
		_ = c.conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// offer queues m without blocking. It reports false when the buffer is full
// or the client is closed.
func (c *Client) offer(m Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

func (c *Client) trySend(m Message) {
	c.offer(m)
}

// close closes the send channel once; writePump then ends the connection.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump pumps messages from the websocket connection to the engine.
func (c *Client) readPump() {
	defer func() {
		// The hub may already be gone during shutdown.
		select {
		case c.hub.unregister <- c:
		case <-time.After(writeWait):
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Str("client", c.ID()).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		c.trySend(Message{Type: MessageTypeError, Data: errorData{Error: "malformed message"}})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.trySend(Message{Type: MessageTypePong})

	case MessageTypeSelect:
		var sel SelectData
		if err := json.Unmarshal(msg.Data, &sel); err != nil || sel.Key == "" {
			c.trySend(Message{Type: MessageTypeError, Data: errorData{Error: "select needs a key"}})
			return
		}
		if c.limiter != nil && !c.limiter.Allow() {
			metrics.WSRateLimited.Inc()
			c.trySend(Message{Type: MessageTypeError, Data: errorData{Error: "rate limited", Key: sel.Key}})
			return
		}
		if err := c.onSelect(sel.Key); err != nil {
			c.trySend(Message{Type: MessageTypeError, Data: errorData{Error: err.Error(), Key: sel.Key}})
		}

	default:
		c.trySend(Message{Type: MessageTypeError, Data: errorData{Error: "unknown message type " + msg.Type}})
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(message)
			if err != nil {
				logging.Error().Err(err).Str("message_type", message.Type).Msg("failed to encode message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
