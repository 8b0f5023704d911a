package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newsdeck/newswire/internal/domain"
)

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultStaleTimeout      = 90 * time.Second
)

// Clock is injectable for deterministic heartbeat tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Stats is the hub's ops read model.
type Stats struct {
	Clients int            `json:"clients"`
	Rooms   map[string]int `json:"rooms"`
}

// Hub maintains connected clients, their room memberships, and fans
// typed events out to the correct subscriber set. Membership mutation
// and publish iteration run under one mutex that is never held across a
// blocking network write; per-client writer goroutines do the sending.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*connection

	heartbeatInterval time.Duration
	staleTimeout      time.Duration
	clock             Clock
}

type Option func(*Hub)

func WithHeartbeatInterval(d time.Duration) Option {
	return func(h *Hub) { h.heartbeatInterval = d }
}

func WithStaleTimeout(d time.Duration) Option {
	return func(h *Hub) { h.staleTimeout = d }
}

func WithClock(c Clock) Option {
	return func(h *Hub) { h.clock = c }
}

func New(opts ...Option) *Hub {
	h := &Hub{
		clients:           make(map[string]*connection),
		heartbeatInterval: defaultHeartbeatInterval,
		staleTimeout:      defaultStaleTimeout,
		clock:             systemClock{},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register adds a connection, joins it to the default room, and starts
// its writer goroutine. Returns the assigned client id.
func (h *Hub) Register(conn Conn) string {
	c := &connection{
		id:              uuid.NewString(),
		conn:            conn,
		rooms:           map[string]struct{}{domain.DefaultRoom: {}},
		send:            make(chan domain.Event, sendBufferSize),
		lastHeartbeatAt: h.clock.Now(),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	id := c.id
	go c.writer(func() { h.Unregister(id) })

	slog.Debug("Client registered", "client", c.id)
	return c.id
}

// Unregister removes the client and its room memberships immediately.
// Idempotent; no further events are attempted.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		slog.Debug("Client unregistered", "client", id)
	}
}

// Join subscribes the client to a room. Idempotent.
func (h *Hub) Join(id, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		c.rooms[room] = struct{}{}
	}
}

// Leave unsubscribes the client from a room. Idempotent.
func (h *Hub) Leave(id, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		delete(c.rooms, room)
	}
}

// Touch records read-side activity for the client's liveness accounting.
func (h *Hub) Touch(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		c.lastHeartbeatAt = h.clock.Now()
	}
}

// Publish delivers event to every currently-joined client of room,
// best effort. Enqueues in publish order so each still-connected client
// observes per-room FIFO; a client whose queue is full is dropped and
// delivery to the rest proceeds.
func (h *Hub) Publish(room string, event domain.Event) {
	var overflowed []string

	h.mu.Lock()
	for _, c := range h.clients {
		if !c.inRoom(room) {
			continue
		}
		select {
		case c.send <- event:
		default:
			overflowed = append(overflowed, c.id)
		}
	}
	h.mu.Unlock()

	for _, id := range overflowed {
		slog.Warn("Dropping slow client", "client", id, "room", room)
		h.Unregister(id)
	}
}

// Run sends periodic heartbeats and reaps connections with no activity
// past the stale timeout. Blocks until ctx is cancelled, then closes
// all connections.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.heartbeat()
		}
	}
}

func (h *Hub) heartbeat() {
	now := h.clock.Now()
	event := domain.NewHeartbeatEvent(now)

	var stale []string

	h.mu.Lock()
	for _, c := range h.clients {
		if now.Sub(c.lastHeartbeatAt) > h.staleTimeout {
			stale = append(stale, c.id)
			continue
		}
		select {
		case c.send <- event:
			c.lastHeartbeatAt = now
		default:
		}
	}
	h.mu.Unlock()

	for _, id := range stale {
		slog.Info("Reaping stale client", "client", id)
		h.Unregister(id)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Unregister(id)
	}
}

// Stats returns the current connection and room membership counts.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := Stats{
		Clients: len(h.clients),
		Rooms:   make(map[string]int),
	}
	for _, c := range h.clients {
		for room := range c.rooms {
			stats.Rooms[room]++
		}
	}

	return stats
}
