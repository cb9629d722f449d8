package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ErrConnectionRejected is returned when the auth handshake fails or times
// out. The socket is closed with a policy-violation frame either way.
var ErrConnectionRejected = errors.New("websocket handshake rejected")

const (
	// authTimeout bounds how long a fresh socket may stay silent before
	// sending its auth message.
	authTimeout = 10 * time.Second
	// writeTimeout bounds one outbound frame; a peer slower than this is
	// treated as dead.
	writeTimeout = 5 * time.Second
	// readLimit caps inbound frames. Clients only ever send the handshake and
	// small location pings.
	readLimit = 4 << 10
	// heartbeatInterval is how often clients are expected to send a frame.
	// The read deadline allows one missed beat.
	heartbeatInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser dashboards connect from their own origins; authorization is the
	// handshake message, not the Origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// authMessage is the first frame every client must send after the upgrade.
type authMessage struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
}

// locationMessage is the periodic ping sent by driver connections.
type locationMessage struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	RecordedAt time.Time `json:"recordedAt"`
}

var subscriberRoles = map[order.ActorRole]struct{}{
	order.RoleCustomer:   {},
	order.RoleRestaurant: {},
	order.RoleKitchen:    {},
	order.RoleDriver:     {},
}

// wsSink adapts one gorilla websocket to the hub's Sink. Writes are
// serialized; the hub's writer goroutine is the only caller of Send but Close
// can race with it.
type wsSink struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (s *wsSink) Send(event realtime.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.ws.WriteJSON(event)
}

func (s *wsSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(writeTimeout))
	return s.ws.Close()
}

// HandleWebSocket handles GET /ws: upgrade, auth handshake, hub registration.
// Driver connections additionally feed location pings into dispatch.
func (s *Server) HandleWebSocket(ctx echo.Context) error {
	ws, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	tenantID, userID, role, err := s.authenticate(ws)
	if err != nil {
		s.logger.Warn("websocket rejected", "remote", ws.RemoteAddr().String(), "error", err)
		_ = ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"),
			time.Now().Add(writeTimeout))
		_ = ws.Close()
		return nil
	}

	conn := s.hub.Register(tenantID.String(), role, userID.String(), &wsSink{ws: ws})
	go s.readLoop(ws, conn, tenantID, userID, role)
	return nil
}

func (s *Server) authenticate(ws *websocket.Conn) (tenantID, userID kernel.UUID, role order.ActorRole, err error) {
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(authTimeout))

	var msg authMessage
	if err = ws.ReadJSON(&msg); err != nil {
		return kernel.UUID{}, kernel.UUID{}, "", ErrConnectionRejected
	}

	tenantID, err = kernel.UUIDFromString(msg.TenantID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, "", ErrConnectionRejected
	}
	userID, err = kernel.UUIDFromString(msg.UserID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, "", ErrConnectionRejected
	}
	role = order.ActorRole(msg.Role)
	if _, ok := subscriberRoles[role]; !ok {
		return kernel.UUID{}, kernel.UUID{}, "", ErrConnectionRejected
	}
	return tenantID, userID, role, nil
}

// readLoop drains inbound frames until the peer goes away. Every frame counts
// as a liveness signal for the reaper; driver frames are location pings.
func (s *Server) readLoop(
	ws *websocket.Conn,
	conn *realtime.Conn,
	tenantID, userID kernel.UUID,
	role order.ActorRole,
) {
	defer conn.Close()
	if role == order.RoleDriver {
		// A disconnected driver cannot receive offers, so drop the presence
		// entry now instead of waiting for the TTL.
		defer func() {
			if err := s.tracker.MarkOffline(context.Background(), tenantID, userID); err != nil {
				s.logger.Error("presence sign-off failed", "driver_id", userID.String(), "error", err)
			}
		}()
	}

	for {
		_ = ws.SetReadDeadline(time.Now().Add(2 * heartbeatInterval))

		var msg locationMessage
		if err := ws.ReadJSON(&msg); err != nil {
			return
		}
		conn.Touch()

		if role != order.RoleDriver {
			continue
		}

		location, err := kernel.NewGeoPoint(msg.Lat, msg.Lon)
		if err != nil {
			continue
		}
		cmd, err := commands.NewRecordLocationCommand(tenantID, userID, location, msg.RecordedAt)
		if err != nil {
			continue
		}
		if err = s.recordLocationHandler.Handle(context.Background(), cmd); err != nil {
			s.logger.Error("location ping failed", "driver_id", userID.String(), "error", err)
		}
	}
}
