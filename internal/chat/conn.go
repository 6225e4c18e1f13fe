package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lox/wordsagainststrangers/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBufferSize = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// conn is one WebSocket client of the hub
type conn struct {
	hub     *Hub
	ws      *websocket.Conn
	limiter *rate.Limiter
	logger  *log.Logger
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	send   chan *Envelope
	closed bool
	user   game.PlayerID
	rooms  map[string]bool
}

func newConn(hub *Hub, ws *websocket.Conn, limiter *rate.Limiter) *conn {
	ctx, cancel := context.WithCancel(hub.ctx)

	return &conn{
		hub:     hub,
		ws:      ws,
		limiter: limiter,
		logger:  hub.logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan *Envelope, sendBufferSize),
		rooms:   make(map[string]bool),
	}
}

// Start begins handling the connection
func (c *conn) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	c.cancel()
	return c.ws.Close()
}

// SendEnvelope queues env for the client. A client that cannot keep up is
// disconnected.
func (c *conn) SendEnvelope(env *Envelope) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}
	select {
	case c.send <- env:
		c.mu.RUnlock()
		return nil
	default:
		c.mu.RUnlock()
		c.logger.Warn("Send buffer full, closing connection", "user", c.User())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// User returns the identified user, or "" before hello
func (c *conn) User() game.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *conn) identify(user game.PlayerID, rooms []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
	for _, r := range rooms {
		c.rooms[r] = true
	}
}

func (c *conn) watch(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
}

// watches reports whether the client can see messages at where
func (c *conn) watches(where Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == "" {
		return false
	}
	if where.IsDirect() {
		return where.User == c.user
	}
	return c.rooms[where.Room]
}

func (c *conn) readPump() {
	defer func() {
		_ = c.Close()
		c.hub.unregister(c)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		if c.ctx.Err() != nil {
			return
		}
		c.handleEnvelope(&env)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(env); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *conn) handleEnvelope(env *Envelope) {
	c.logger.Debug("Received", "type", env.Type, "user", c.User())

	switch env.Type {
	case TypeHello:
		var data HelloData
		if err := json.Unmarshal(env.Data, &data); err != nil || data.User == "" {
			c.sendError("invalid_message", "hello requires a user")
			return
		}
		if data.User == BotUser {
			c.sendError("invalid_user", "that name is reserved")
			return
		}
		c.identify(data.User, data.Rooms)
		c.logger.Info("Client identified", "user", data.User, "rooms", len(data.Rooms))
		welcome, _ := NewEnvelope(TypeWelcome, WelcomeData{User: data.User})
		_ = c.SendEnvelope(welcome)

	case TypeSay:
		if c.User() == "" {
			c.sendError("not_identified", "send hello first")
			return
		}
		if !c.limiter.Allow() {
			c.sendError("rate_limited", "slow down")
			return
		}
		var data SayData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse say data")
			return
		}
		c.hub.receive(c, data)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+string(env.Type))
	}
}

func (c *conn) sendError(code, message string) {
	env, err := NewEnvelope(TypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendEnvelope(env)
}
