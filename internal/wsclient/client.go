package wsclient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/domain"
)

// State is the client's view of its hub connection.
type State string

const (
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	StateDisconnected State = "DISCONNECTED"
	StateFailed       State = "FAILED"
)

const (
	maxAttempts = 5
	baseDelay   = time.Second
	maxDelay    = 30 * time.Second
)

// BackoffDelay returns the wait before reconnect attempt number attempt
// (0-based): min(1s * 2^attempt, 30s).
func BackoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := baseDelay << uint(attempt)
	if d > maxDelay || d <= 0 {
		return maxDelay
	}
	return d
}

// Conn is one live connection to the hub.
type Conn interface {
	ReadEvent() (domain.Event, error)
	Send(v any) error
	Close() error
}

// Dialer opens hub connections; injectable for tests.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// roomMessage mirrors the hub's inbound wire format.
type roomMessage struct {
	Action string `json:"action"`
	Room   string `json:"room"`
	Data   any    `json:"data,omitempty"`
}

// Client wraps one logical hub connection in an explicit reconnecting
// state machine. It detects disconnects, backs off exponentially,
// rejoins its rooms, and surfaces connection status to its caller. It
// never queues outbound messages while disconnected.
type Client struct {
	url    string
	dialer Dialer

	// timerFn is injectable so backoff is deterministic under test.
	timerFn func(d time.Duration) <-chan time.Time

	mu         sync.Mutex
	state      State
	attempt    int
	err        error
	conn       Conn
	rooms      map[string]struct{}
	lastEvents map[domain.EventType]domain.Event

	reconnectCh chan struct{}
	stopCh      chan struct{}
	doneCh      chan struct{}
	stopOnce    sync.Once
}

type Option func(*Client)

func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithTimer(fn func(d time.Duration) <-chan time.Time) Option {
	return func(c *Client) { c.timerFn = fn }
}

// WithRooms adds rooms beyond the default that the client rejoins on
// every (re)connect.
func WithRooms(rooms ...string) Option {
	return func(c *Client) {
		for _, r := range rooms {
			c.rooms[r] = struct{}{}
		}
	}
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:         url,
		dialer:      &gorillaDialer{},
		timerFn:     func(d time.Duration) <-chan time.Time { return time.After(d) },
		state:       StateConnecting,
		rooms:       map[string]struct{}{domain.DefaultRoom: {}},
		lastEvents:  make(map[domain.EventType]domain.Event),
		reconnectCh: make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start runs the connection loop until ctx is cancelled or Close is
// called. The first connection attempt happens immediately.
func (c *Client) Start(ctx context.Context) {
	go c.run(ctx)
}

// Close requests a voluntary disconnect; no reconnect is attempted.
func (c *Client) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.doneCh
}

func (c *Client) run(ctx context.Context) {
	defer close(c.doneCh)

	for {
		if c.stopped(ctx) {
			return
		}

		c.setState(StateConnecting)
		conn, err := c.dialer.Dial(ctx, c.url)
		if err == nil {
			c.onConnected(conn)

			// Shutdown must unblock a read in progress.
			watchDone := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = conn.Close()
				case <-c.stopCh:
					_ = conn.Close()
				case <-watchDone:
				}
			}()

			c.readLoop(ctx, conn)
			close(watchDone)
			_ = conn.Close()
			c.clearConn()
			if c.stopped(ctx) {
				return
			}
			c.setState(StateDisconnected)
			slog.Info("Hub connection lost, scheduling reconnect")
		} else {
			c.mu.Lock()
			c.attempt++
			exhausted := c.attempt >= maxAttempts
			c.mu.Unlock()

			if exhausted {
				c.fail()
				if !c.awaitManualReconnect(ctx) {
					return
				}
				continue
			}
		}

		if !c.backoff(ctx) {
			return
		}
	}
}

// backoff waits for the current attempt's delay. A manual Reconnect
// cancels the wait and retries immediately. Returns false on shutdown.
func (c *Client) backoff(ctx context.Context) bool {
	c.mu.Lock()
	delay := BackoffDelay(c.attempt)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return false
	case <-c.stopCh:
		return false
	case <-c.reconnectCh:
		return true
	case <-c.timerFn(delay):
		return true
	}
}

// awaitManualReconnect parks a FAILED client until the caller resets it.
func (c *Client) awaitManualReconnect(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.stopCh:
		return false
	case <-c.reconnectCh:
		return true
	}
}

func (c *Client) readLoop(ctx context.Context, conn Conn) {
	for {
		event, err := conn.ReadEvent()
		if err != nil {
			return
		}

		c.mu.Lock()
		c.lastEvents[event.Type] = event
		c.mu.Unlock()
	}
}

func (c *Client) onConnected(conn Conn) {
	// A manual reconnect requested while connecting is satisfied now.
	select {
	case <-c.reconnectCh:
	default:
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.attempt = 0
	c.err = nil
	rooms := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.Unlock()

	for _, room := range rooms {
		if err := conn.Send(roomMessage{Action: "join", Room: room}); err != nil {
			slog.Warn("Failed to rejoin room", "room", room, "error", err)
		}
	}

	slog.Info("Connected to hub", "rooms", len(rooms))
}

func (c *Client) fail() {
	c.mu.Lock()
	c.state = StateFailed
	c.err = apperr.ErrReconnectExhausted
	c.mu.Unlock()

	slog.Error("Reconnect attempts exhausted", "attempts", maxAttempts)
}

// Reconnect zeroes the attempt counter and retries immediately,
// cancelling any pending backoff. Callable from any state.
func (c *Client) Reconnect() {
	c.mu.Lock()
	c.attempt = 0
	c.err = nil
	c.mu.Unlock()

	select {
	case c.reconnectCh <- struct{}{}:
	default:
	}
}

// Emit sends a message to the hub. It fails without queueing when the
// client is not connected.
func (c *Client) Emit(event string, data any) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		return apperr.ErrConnectionLost
	}

	return conn.Send(roomMessage{Action: event, Data: data})
}

// Join adds a room to the desired set and joins it now if connected.
func (c *Client) Join(room string) error {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		return nil // joined on next connect
	}
	return conn.Send(roomMessage{Action: "join", Room: room})
}

// Leave removes a room from the desired set and leaves it now if connected.
func (c *Client) Leave(room string) error {
	c.mu.Lock()
	delete(c.rooms, room)
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		return nil
	}
	return conn.Send(roomMessage{Action: "leave", Room: room})
}

// LastEvent returns the most recent received event of the given type.
func (c *Client) LastEvent(t domain.EventType) (domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	event, ok := c.lastEvents[t]
	return event, ok
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Err returns the persistent error, non-nil only in the FAILED state.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) clearConn() {
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
}

func (c *Client) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-c.stopCh:
		return true
	default:
		return false
	}
}
