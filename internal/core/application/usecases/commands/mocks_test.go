package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/dispatch"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/pkg/ephemeral"
	"foodcourt/internal/realtime"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testTracker builds an isolated presence tracker with a generous TTL.
func testTracker() *presence.Tracker {
	return presence.NewTracker(ephemeral.NewMemoryStore(), time.Minute)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}
func (m *MockOrderRepository) GetByExternalRef(ctx context.Context, ref order.ExternalRef) (*order.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}
func (m *MockOrderRepository) GetAllInStatus(_ context.Context, _ kernel.UUID, _ order.Status) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) CreateIfAbsent(ctx context.Context, a *dispatch.Assignment) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}
func (m *MockAssignmentRepository) Update(ctx context.Context, a *dispatch.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockAssignmentRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*dispatch.Assignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatch.Assignment), args.Error(1)
}
func (m *MockAssignmentRepository) GetActiveByDriver(ctx context.Context, driverID kernel.UUID) ([]*dispatch.Assignment, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dispatch.Assignment), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockDispatchUoW struct{ mock.Mock }

func (m *MockDispatchUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockDispatchUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockDispatchUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockDispatchUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}
func (m *MockDispatchUoW) AssignmentRepository() ports.AssignmentRepository {
	args := m.Called()
	return args.Get(0).(ports.AssignmentRepository)
}

type MockDispatchUoWFactory struct{ mock.Mock }

func (m *MockDispatchUoWFactory) Create() commands.DispatchUoW {
	args := m.Called()
	return args.Get(0).(commands.DispatchUoW)
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) byKind(kind realtime.EventKind) []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []realtime.Event
	for _, e := range p.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func testCustomer(t *testing.T) order.Customer {
	t.Helper()
	location, err := kernel.NewGeoPoint(-23.5505, -46.6333)
	require.NoError(t, err)
	customer, err := order.NewCustomer(
		kernel.NewUUID(), "Ana Souza", "+55 11 99999-0000", "Av. Paulista 1000", location)
	require.NoError(t, err)
	return customer
}

func testItems(t *testing.T) []order.Item {
	t.Helper()
	price, err := kernel.NewMoney(2500)
	require.NoError(t, err)
	item, err := order.NewItem(kernel.NewUUID(), "Burger", 1, price)
	require.NoError(t, err)
	return []order.Item{item}
}

func testGeoPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

// readyDeliveryOrder builds an order advanced to ready, awaiting a driver.
func readyDeliveryOrder(t *testing.T) *order.Order {
	t.Helper()
	fee, err := kernel.NewMoney(900)
	require.NoError(t, err)
	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), testCustomer(t), testItems(t),
		fee, order.DeliveryTypeDelivery, order.PaymentMethodCash, nil, nil,
		time.Now(), order.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, o.TransitionTo(order.StatusConfirmed, order.RoleRestaurant, time.Now()))
	require.NoError(t, o.TransitionTo(order.StatusPreparing, order.RoleKitchen, time.Now()))
	require.NoError(t, o.TransitionTo(order.StatusReady, order.RoleKitchen, time.Now()))
	return o
}

func newActiveAssignment(o *order.Order, driverID kernel.UUID) (*dispatch.Assignment, error) {
	return dispatch.NewAssignment(o.ID(), driverID, o.TenantID(), time.Now())
}
