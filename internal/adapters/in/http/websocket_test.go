package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, env *testEnv) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(env.echo)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws, server
}

func TestHandleWebSocket_DeliversEventsAfterHandshake(t *testing.T) {
	env := newTestEnv(t)
	tenantID := kernel.NewUUID()
	userID := kernel.NewUUID()

	ws, _ := dialWS(t, env)
	require.NoError(t, ws.WriteJSON(map[string]string{
		"userId":   userID.String(),
		"tenantId": tenantID.String(),
		"role":     "kitchen",
	}))

	require.Eventually(t, func() bool { return env.hub.ConnectionCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	env.hub.Publish(realtime.Event{
		Kind:      realtime.EventOrderStatusChanged,
		TenantID:  tenantID.String(),
		Timestamp: time.Now(),
	}.WithTarget(realtime.TargetRoles(tenantID, order.RoleKitchen)))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event realtime.Event
	require.NoError(t, ws.ReadJSON(&event))
	assert.Equal(t, realtime.EventOrderStatusChanged, event.Kind)
	assert.Equal(t, tenantID.String(), event.TenantID)
}

func TestHandleWebSocket_RejectsBadHandshake(t *testing.T) {
	env := newTestEnv(t)

	ws, _ := dialWS(t, env)
	require.NoError(t, ws.WriteJSON(map[string]string{
		"userId":   "not-a-uuid",
		"tenantId": kernel.NewUUID().String(),
		"role":     "kitchen",
	}))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
	assert.Equal(t, 0, env.hub.ConnectionCount())
}

func TestHandleWebSocket_RejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	ws, _ := dialWS(t, env)
	require.NoError(t, ws.WriteJSON(map[string]string{
		"userId":   kernel.NewUUID().String(),
		"tenantId": kernel.NewUUID().String(),
		"role":     "admin",
	}))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestHandleWebSocket_DriverPingsFeedPresence(t *testing.T) {
	env := newTestEnv(t)
	tenantID := kernel.NewUUID()
	driverID := kernel.NewUUID()

	ws, _ := dialWS(t, env)
	require.NoError(t, ws.WriteJSON(map[string]string{
		"userId":   driverID.String(),
		"tenantId": tenantID.String(),
		"role":     "driver",
	}))
	require.Eventually(t, func() bool { return env.hub.ConnectionCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.WriteJSON(map[string]any{
		"lat": -23.56, "lon": -46.64, "recordedAt": time.Now().Format(time.RFC3339),
	}))

	require.Eventually(t, func() bool {
		location, _, ok, err := env.tracker.LastKnown(t.Context(), tenantID, driverID)
		return err == nil && ok && location.Lat() == -23.56
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleWebSocket_DriverDisconnectDropsPresence(t *testing.T) {
	env := newTestEnv(t)
	tenantID := kernel.NewUUID()
	driverID := kernel.NewUUID()

	ws, _ := dialWS(t, env)
	require.NoError(t, ws.WriteJSON(map[string]string{
		"userId":   driverID.String(),
		"tenantId": tenantID.String(),
		"role":     "driver",
	}))
	require.NoError(t, ws.WriteJSON(map[string]any{
		"lat": -23.56, "lon": -46.64, "recordedAt": time.Now().Format(time.RFC3339),
	}))
	require.Eventually(t, func() bool {
		_, _, ok, err := env.tracker.LastKnown(t.Context(), tenantID, driverID)
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.Close())

	// The presence entry goes away with the socket, not with the TTL.
	require.Eventually(t, func() bool {
		_, _, ok, err := env.tracker.LastKnown(t.Context(), tenantID, driverID)
		return err == nil && !ok
	}, 2*time.Second, 10*time.Millisecond)
}
