package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	httpadapter "foodcourt/internal/adapters/in/http"
	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/dispatch"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/domain/services"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/ingestion"
	"foodcourt/internal/pkg/ephemeral"
	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/realtime"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory persistence double shared by every fake unit of
// work of one test server.
type memoryStore struct {
	mu          sync.Mutex
	orders      map[string]*order.Order
	byRef       map[string]*order.Order
	assignments map[string]*dispatch.Assignment
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:      make(map[string]*order.Order),
		byRef:       make(map[string]*order.Order),
		assignments: make(map[string]*dispatch.Assignment),
	}
}

type memoryUoW struct{ store *memoryStore }

func (u memoryUoW) Begin(context.Context) error    { return nil }
func (u memoryUoW) Commit(context.Context) error   { return nil }
func (u memoryUoW) Rollback(context.Context) error { return nil }
func (u memoryUoW) OrderRepository() ports.OrderRepository {
	return memoryOrderRepo{u.store}
}
func (u memoryUoW) AssignmentRepository() ports.AssignmentRepository {
	return memoryAssignmentRepo{u.store}
}

type memoryUoWFactory struct{ store *memoryStore }

func (f memoryUoWFactory) Create() commands.OrderUoW { return memoryUoW{f.store} }

type memoryDispatchFactory struct{ store *memoryStore }

func (f memoryDispatchFactory) Create() commands.DispatchUoW { return memoryUoW{f.store} }

type memoryOrderRepo struct{ store *memoryStore }

func (r memoryOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID().String()] = o
	if ref := o.ExternalRef(); ref != nil {
		r.store.byRef[ref.String()] = o
	}
	return nil
}

func (r memoryOrderRepo) Update(ctx context.Context, o *order.Order) error {
	return r.Add(ctx, o)
}

func (r memoryOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return o, nil
}

func (r memoryOrderRepo) GetByExternalRef(_ context.Context, ref order.ExternalRef) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.byRef[ref.String()], nil
}

func (r memoryOrderRepo) GetAllInStatus(context.Context, kernel.UUID, order.Status) ([]*order.Order, error) {
	return nil, nil
}

type memoryAssignmentRepo struct{ store *memoryStore }

func (r memoryAssignmentRepo) CreateIfAbsent(_ context.Context, a *dispatch.Assignment) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.assignments[a.OrderID().String()]; ok && existing.IsActive() {
		return false, nil
	}
	r.store.assignments[a.OrderID().String()] = a
	return true, nil
}

func (r memoryAssignmentRepo) Update(_ context.Context, a *dispatch.Assignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.assignments[a.OrderID().String()] = a
	return nil
}

func (r memoryAssignmentRepo) GetActiveByOrder(_ context.Context, orderID kernel.UUID) (*dispatch.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a := r.store.assignments[orderID.String()]
	if a == nil || !a.IsActive() {
		return nil, nil
	}
	return a, nil
}

func (r memoryAssignmentRepo) GetActiveByDriver(_ context.Context, driverID kernel.UUID) ([]*dispatch.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var active []*dispatch.Assignment
	for _, a := range r.store.assignments {
		if a.IsActive() && a.DriverID().IsEqual(driverID) {
			active = append(active, a)
		}
	}
	return active, nil
}

type testEnv struct {
	echo    *echo.Echo
	store   *memoryStore
	hub     *realtime.Hub
	tracker *presence.Tracker
}

const webhookSecret = "ifood-secret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.Default()
	store := newMemoryStore()
	hub := realtime.NewHub(logger, 0)
	t.Cleanup(hub.CloseAll)

	orderFactory := memoryUoWFactory{store}
	dispatchFactory := memoryDispatchFactory{store}
	locks := commands.NewOrderLocks()
	publisher := hub
	tracker := presence.NewTracker(ephemeral.NewMemoryStore(), time.Minute)

	baseFee, err := kernel.NewMoney(500)
	require.NoError(t, err)
	perKm, err := kernel.NewMoney(200)
	require.NoError(t, err)
	feePolicy := services.NewFeePolicy(baseFee, perKm)

	registry := prometheus.NewRegistry()
	ingestHandler := commands.NewIngestExternalOrderCommandHandler(orderFactory, publisher)
	ingestionService := ingestion.NewService(
		ingestion.NewRegistry(ingestion.NewIfoodNormalizer()),
		ingestion.NewSignatureVerifier(map[order.Platform]string{
			order.PlatformIfood: webhookSecret,
		}),
		&ingestHandler,
		ingestion.NewMetrics(registry),
		logger)

	server := httpadapter.NewServer(
		httpadapter.Handlers{
			Ingestion:      ingestionService,
			CreateOrder:    commands.NewCreateOrderCommandHandler(orderFactory, feePolicy, publisher),
			Transition:     commands.NewTransitionOrderCommandHandler(dispatchFactory, locks, tracker, publisher),
			Accept:         commands.NewAcceptOrderCommandHandler(dispatchFactory, locks, publisher),
			Release:        commands.NewReleaseAssignmentCommandHandler(dispatchFactory, locks, tracker, publisher),
			MarkPaid:       commands.NewMarkOrderPaidCommandHandler(orderFactory, locks),
			RecordLocation: commands.NewRecordLocationCommandHandler(tracker, dispatchFactory, publisher),
			Presence:       tracker,
		},
		hub, registry, logger)

	e := echo.New()
	server.RegisterRoutes(e)
	return &testEnv{echo: e, store: store, hub: hub, tracker: tracker}
}

func (env *testEnv) request(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedReadyOrder(t *testing.T, tenantID kernel.UUID) *order.Order {
	t.Helper()
	location, err := kernel.NewGeoPoint(-23.5505, -46.6333)
	require.NoError(t, err)
	customer, err := order.NewCustomer(kernel.NewUUID(), "Ana", "+55 11 9", "Av. Paulista 1000", location)
	require.NoError(t, err)
	price, err := kernel.NewMoney(2500)
	require.NoError(t, err)
	item, err := order.NewItem(kernel.NewUUID(), "Burger", 1, price)
	require.NoError(t, err)
	fee, err := kernel.NewMoney(900)
	require.NoError(t, err)

	o, err := order.NewOrder(
		kernel.NewUUID(), tenantID, customer, []order.Item{item},
		fee, order.DeliveryTypeDelivery, order.PaymentMethodCash, nil, nil,
		time.Now(), order.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, o.TransitionTo(order.StatusConfirmed, order.RoleRestaurant, time.Now()))
	require.NoError(t, o.TransitionTo(order.StatusPreparing, order.RoleKitchen, time.Now()))
	require.NoError(t, o.TransitionTo(order.StatusReady, order.RoleKitchen, time.Now()))

	env.store.mu.Lock()
	env.store.orders[o.ID().String()] = o
	env.store.mu.Unlock()
	return o
}

const webhookBody = `{
	"id": "IF-9001",
	"customer": {"name": "Ana Souza", "phone": "+55 11 99999-0000"},
	"deliveryAddress": {
		"formattedAddress": "Av. Paulista 1000",
		"coordinates": {"latitude": -23.5505, "longitude": -46.6333}
	},
	"items": [{"name": "Burger", "quantity": 1, "unitPrice": 25.00}],
	"deliveryFee": 9.00,
	"orderType": "DELIVERY",
	"payments": [{"method": "CREDIT", "prepaid": true}]
}`

func webhookPath(tenantID kernel.UUID) string {
	return "/api/v1/tenants/" + tenantID.String() + "/webhooks/ifood"
}

func TestHandleWebhook(t *testing.T) {
	t.Run("new_order_answers_201", func(t *testing.T) {
		env := newTestEnv(t)
		tenantID := kernel.NewUUID()
		body := []byte(webhookBody)

		rec := env.request(http.MethodPost, webhookPath(tenantID), body, map[string]string{
			"X-Webhook-Signature": ingestion.Sign(webhookSecret, body),
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			OrderID   string `json:"orderId"`
			Duplicate bool   `json:"duplicate"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Duplicate)
		assert.NotEmpty(t, resp.OrderID)
	})

	t.Run("redelivery_answers_200_with_same_order", func(t *testing.T) {
		env := newTestEnv(t)
		tenantID := kernel.NewUUID()
		body := []byte(webhookBody)
		headers := map[string]string{"X-Webhook-Signature": ingestion.Sign(webhookSecret, body)}

		first := env.request(http.MethodPost, webhookPath(tenantID), body, headers)
		second := env.request(http.MethodPost, webhookPath(tenantID), body, headers)

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)

		var firstResp, secondResp struct {
			OrderID   string `json:"orderId"`
			Duplicate bool   `json:"duplicate"`
		}
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
		assert.Equal(t, firstResp.OrderID, secondResp.OrderID)
		assert.True(t, secondResp.Duplicate)
	})

	t.Run("bad_signature_answers_401", func(t *testing.T) {
		env := newTestEnv(t)
		body := []byte(webhookBody)

		rec := env.request(http.MethodPost, webhookPath(kernel.NewUUID()), body, map[string]string{
			"X-Webhook-Signature": ingestion.Sign("wrong-secret", body),
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed_payload_answers_400", func(t *testing.T) {
		env := newTestEnv(t)
		body := []byte(`{"surprise": true}`)

		rec := env.request(http.MethodPost, webhookPath(kernel.NewUUID()), body, map[string]string{
			"X-Webhook-Signature": ingestion.Sign(webhookSecret, body),
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown_platform_answers_404", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.request(http.MethodPost,
			"/api/v1/tenants/"+kernel.NewUUID().String()+"/webhooks/doordash",
			[]byte(`{}`), nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAcceptOrder(t *testing.T) {
	env := newTestEnv(t)
	tenantID := kernel.NewUUID()
	o := env.seedReadyOrder(t, tenantID)
	path := "/api/v1/tenants/" + tenantID.String() + "/orders/" + o.ID().String() + "/accept"

	winner, _ := json.Marshal(map[string]string{"driverId": kernel.NewUUID().String()})
	rec := env.request(http.MethodPost, path, winner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	loser, _ := json.Marshal(map[string]string{"driverId": kernel.NewUUID().String()})
	rec = env.request(http.MethodPost, path, loser, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransitionOrder(t *testing.T) {
	env := newTestEnv(t)
	tenantID := kernel.NewUUID()
	o := env.seedReadyOrder(t, tenantID)
	path := "/api/v1/tenants/" + tenantID.String() + "/orders/" + o.ID().String() + "/transition"

	t.Run("unauthorized_role_answers_403", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"target": "out_for_delivery", "role": "customer", "actorId": kernel.NewUUID().String(),
		})
		rec := env.request(http.MethodPost, path, body, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid_transition_answers_409", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"target": "pending", "role": "restaurant", "actorId": kernel.NewUUID().String(),
		})
		rec := env.request(http.MethodPost, path, body, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("valid_transition_answers_204", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"target": "cancelled", "role": "restaurant", "actorId": kernel.NewUUID().String(),
		})
		rec := env.request(http.MethodPost, path, body, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestGetOnlineDrivers(t *testing.T) {
	env := newTestEnv(t)
	tenantID := kernel.NewUUID()
	otherTenant := kernel.NewUUID()
	location, err := kernel.NewGeoPoint(-23.5505, -46.6333)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = env.tracker.Record(ctx, tenantID, kernel.NewUUID(), location, time.Now())
	require.NoError(t, err)
	_, err = env.tracker.Record(ctx, tenantID, kernel.NewUUID(), location, time.Now())
	require.NoError(t, err)
	_, err = env.tracker.Record(ctx, otherTenant, kernel.NewUUID(), location, time.Now())
	require.NoError(t, err)

	rec := env.request(http.MethodGet, "/api/v1/tenants/"+tenantID.String()+"/drivers/online", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		OnlineDrivers int64 `json:"onlineDrivers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, int64(2), response.OnlineDrivers)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
