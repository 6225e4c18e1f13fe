package chat

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lox/wordsagainststrangers/internal/game"
)

// BotUser is the author of every message the hub posts on the bot's behalf.
const BotUser game.PlayerID = "words-against-strangers"

// Handler receives inbound chat messages.
type Handler func(ctx context.Context, msg Message) error

// HubOptions configures per-connection throttling
type HubOptions struct {
	MessagesPerSecond float64
	Burst             int
}

// Hub is a small WebSocket chat server. Clients identify as a user, watch
// rooms and post messages; the hub hands them to a Handler and implements
// Transport for the bot's replies.
type Hub struct {
	upgrader websocket.Upgrader
	opts     HubOptions
	logger   *log.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.RWMutex
	conns   map[*conn]struct{}
	handler Handler
}

// NewHub creates a hub
func NewHub(opts HubOptions, logger *log.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		opts:   opts,
		logger: logger.WithPrefix("hub"),
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[*conn]struct{}),
	}
}

// SetHandler sets the receiver of inbound messages
func (h *Hub) SetHandler(handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// Routes returns the hub's HTTP handlers
func (h *Hub) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

// Close disconnects every client
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	conns := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

// Users returns the identified users currently connected
func (h *Hub) Users() []game.PlayerID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[game.PlayerID]bool)
	var users []game.PlayerID
	for c := range h.conns {
		if u := c.User(); u != "" && !seen[u] {
			seen[u] = true
			users = append(users, u)
		}
	}
	return users
}

// Send implements Transport
func (h *Hub) Send(ctx context.Context, to Address, content string) (string, error) {
	id := uuid.NewString()
	env, err := NewEnvelope(TypeMessage, MessageData{ID: id, Where: to, Author: BotUser, Content: content})
	if err != nil {
		return "", err
	}
	if err := h.deliver(ctx, to, env); err != nil {
		return "", err
	}
	return id, nil
}

// Edit implements Transport
func (h *Hub) Edit(ctx context.Context, where Address, messageID, content string) error {
	env, err := NewEnvelope(TypeEdit, EditData{ID: messageID, Where: where, Content: content})
	if err != nil {
		return err
	}
	return h.deliver(ctx, where, env)
}

// React implements Transport
func (h *Hub) React(ctx context.Context, where Address, messageID, emoji string) error {
	env, err := NewEnvelope(TypeReaction, ReactionData{ID: messageID, Where: where, Emoji: emoji})
	if err != nil {
		return err
	}
	return h.deliver(ctx, where, env)
}

// deliver sends env to every connection that can see where. Nobody
// watching is not an error.
func (h *Hub) deliver(ctx context.Context, where Address, env *Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for c := range h.conns {
		if !c.watches(where) {
			continue
		}
		if err := c.SendEnvelope(env); err != nil {
			h.logger.Warn("Failed to send to client", "error", err, "user", c.User())
			continue
		}
		count++
	}
	h.logger.Debug("Delivered", "type", env.Type, "room", where.Room, "user", where.User, "recipients", count)
	return nil
}

// receive assigns an id to a client's message, echoes it to everyone who
// can see it and passes it to the handler.
func (h *Hub) receive(c *conn, data SayData) {
	author := c.User()
	where := Address{Room: data.Room, Channel: data.Channel}
	if data.Room == "" {
		where = Direct(author)
	} else {
		c.watch(data.Room)
	}

	msg := Message{ID: uuid.NewString(), Where: where, Author: author, Content: data.Content}
	env, err := NewEnvelope(TypeMessage, MessageData{ID: msg.ID, Where: where, Author: author, Content: msg.Content})
	if err != nil {
		h.logger.Error("Failed to create message", "error", err)
		return
	}
	_ = h.deliver(h.ctx, where, env)

	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()
	if handler == nil {
		return
	}
	if err := handler(h.ctx, msg); err != nil {
		h.logger.Error("Handler failed", "error", err, "user", author, "room", where.Room)
	}
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	total := len(h.conns)
	h.mu.Unlock()

	if ok {
		h.logger.Info("Client disconnected", "user", c.User(), "total", total)
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	limit := rate.Inf
	if h.opts.MessagesPerSecond > 0 {
		limit = rate.Limit(h.opts.MessagesPerSecond)
	}
	c := newConn(h, ws, rate.NewLimiter(limit, max(1, h.opts.Burst)))

	h.mu.Lock()
	h.conns[c] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("Client connected", "remote", r.RemoteAddr, "total", total)

	c.Start()
}

func (h *Hub) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

var _ Transport = (*Hub)(nil)
