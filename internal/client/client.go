// Package client is a WebSocket client for the chat hub, used by the
// terminal client to play games from a shell.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/wordsagainststrangers/internal/chat"
	"github.com/lox/wordsagainststrangers/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

var ErrNotConnected = errors.New("not connected")

// Client represents a connection to the chat hub
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *chat.Envelope
	events    chan *chat.Envelope
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	user      game.PlayerID
	closeOnce sync.Once
}

// NewClient creates a client for the hub at serverURL
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *chat.Envelope, 64),
		events:    make(chan *chat.Envelope, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// WebSocketURL converts an http(s) or ws(s) server address to the hub's
// WebSocket endpoint.
func WebSocketURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme", server)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Connect dials the hub and starts the read and write pumps
func (c *Client) Connect(ctx context.Context) error {
	target, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to hub", "url", target)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to hub")
	return nil
}

// Disconnect closes the connection. It is safe to call more than once.
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close()
			c.connected = false
		}
		c.logger.Info("Disconnected from hub")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Events delivers every envelope received from the hub. The channel is
// closed when the connection ends.
func (c *Client) Events() <-chan *chat.Envelope {
	return c.events
}

// User returns the name sent in the last Hello
func (c *Client) User() game.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Hello identifies the client and subscribes it to rooms
func (c *Client) Hello(user game.PlayerID, rooms ...string) error {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	return c.sendData(chat.TypeHello, chat.HelloData{User: user, Rooms: rooms})
}

// Say posts content to a room channel, or to the bot directly when to is a
// direct address.
func (c *Client) Say(to chat.Address, content string) error {
	data := chat.SayData{Content: strings.TrimSpace(content)}
	if !to.IsDirect() {
		data.Room = to.Room
		data.Channel = to.Channel
	}
	return c.sendData(chat.TypeSay, data)
}

func (c *Client) sendData(t chat.EnvelopeType, data any) error {
	env, err := chat.NewEnvelope(t, data)
	if err != nil {
		return err
	}
	return c.SendEnvelope(env)
}

// SendEnvelope queues an envelope for the write pump
func (c *Client) SendEnvelope(env *chat.Envelope) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	select {
	case c.send <- env:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// WaitFor reads events until one of type t arrives, discarding the rest.
func (c *Client) WaitFor(t chat.EnvelopeType, timeout time.Duration) (*chat.Envelope, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case env, ok := <-c.events:
			if !ok {
				return nil, ErrNotConnected
			}
			if env.Type == t {
				return env, nil
			}
			c.logger.Debug("Skipping envelope", "type", env.Type, "waiting_for", t)
		case <-timer.C:
			return nil, fmt.Errorf("timeout waiting for %s", t)
		case <-c.ctx.Done():
			return nil, c.ctx.Err()
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.events)
	}()

	for {
		var env chat.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received envelope", "type", env.Type)

		select {
		case c.events <- &env:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Error("Failed to write envelope", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
