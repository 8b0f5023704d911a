package wsclient

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/newsdeck/newswire/internal/domain"
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 5 * time.Second
)

// gorillaDialer is the production Dialer.
type gorillaDialer struct{}

func (gorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	ws, resp, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return &gorillaConn{ws: ws}, nil
}

type gorillaConn struct {
	ws *websocket.Conn
}

func (c *gorillaConn) ReadEvent() (domain.Event, error) {
	var event domain.Event
	if err := c.ws.ReadJSON(&event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (c *gorillaConn) Send(v any) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *gorillaConn) Close() error {
	return c.ws.Close()
}
