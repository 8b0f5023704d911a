package hub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/newsdeck/newswire/internal/domain"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are filtered by the CORS layer; the socket itself
	// is open like the rest of the public surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a gorilla connection to the hub's Conn. Every write is
// individually timed out so one stuck socket cannot wedge its writer.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) WriteEvent(event domain.Event) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(event)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// clientMessage is the inbound wire format for room management.
type clientMessage struct {
	Action string `json:"action"` // "join" | "leave"
	Room   string `json:"room"`
}

// ServeWS upgrades the request and attaches the connection to the hub.
// The read loop handles join/leave requests and liveness; it returns on
// disconnect, which removes the client immediately.
func (h *Hub) ServeWS(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "websocket upgrade failed")
	}

	id := h.Register(&wsConn{ws: ws})

	for {
		var msg clientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Client read error", "client", id, "error", err)
			}
			break
		}

		h.Touch(id)

		switch msg.Action {
		case "join":
			if msg.Room != "" {
				h.Join(id, msg.Room)
			}
		case "leave":
			if msg.Room != "" {
				h.Leave(id, msg.Room)
			}
		}
	}

	h.Unregister(id)
	return nil
}
