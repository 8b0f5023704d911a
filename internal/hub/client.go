package hub

import (
	"time"

	"github.com/newsdeck/newswire/internal/domain"
)

// Conn is the transport side of one client connection. Implementations
// must tolerate WriteEvent being called from a single writer goroutine.
type Conn interface {
	WriteEvent(event domain.Event) error
	Close() error
}

// sendBufferSize bounds the per-client outbound queue. A client that
// falls this far behind is dropped rather than allowed to stall others.
const sendBufferSize = 64

// connection is the hub's private record of one connected viewer.
// Owned exclusively by the hub; all fields are guarded by the hub mutex
// except send, which is written under the mutex and drained by the
// writer goroutine.
type connection struct {
	id              string
	conn            Conn
	rooms           map[string]struct{}
	send            chan domain.Event
	lastHeartbeatAt time.Time
}

func (c *connection) inRoom(room string) bool {
	_, ok := c.rooms[room]
	return ok
}

// writer drains the outbound queue onto the transport. A failed write
// disconnects only this client.
func (c *connection) writer(onError func()) {
	for ev := range c.send {
		if err := c.conn.WriteEvent(ev); err != nil {
			onError()
			break
		}
	}
	_ = c.conn.Close()
}
