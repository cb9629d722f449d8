package commands_test

import (
	"errors"
	"testing"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/domain/services"
	"foodcourt/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testFeePolicy(t *testing.T) services.FeePolicy {
	t.Helper()
	base, err := kernel.NewMoney(500)
	require.NoError(t, err)
	perKm, err := kernel.NewMoney(200)
	require.NoError(t, err)
	return services.NewFeePolicy(base, perKm)
}

func newCreateCommand(t *testing.T, deliveryType order.DeliveryType) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(), kernel.NewUUID(), testCustomer(t), testItems(t),
		deliveryType, order.PaymentMethodCash, testGeoPoint(t, -23.55, -46.63))
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateCommand(t, order.DeliveryTypeDelivery)

	var persisted *order.Order
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).
			Run(func(args mock.Arguments) { persisted = args.Get(1).(*order.Order) }).
			Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := &recordingPublisher{}

	h := commands.NewCreateOrderCommandHandler(factory, testFeePolicy(t), publisher)
	err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, order.StatusPending, persisted.Status())
	// Delivery orders carry a distance-based fee on top of the base fee.
	assert.Greater(t, persisted.DeliveryFee().Cents(), int64(500))
	require.Len(t, publisher.byKind(realtime.EventOrderCreated), 1)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_PickupHasNoFee(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateCommand(t, order.DeliveryTypePickup)

	var persisted *order.Order
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*order.Order) }).
		Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, testFeePolicy(t), &recordingPublisher{})
	require.NoError(t, h.Handle(ctx, cmd))

	require.NotNil(t, persisted)
	assert.Zero(t, persisted.DeliveryFee().Cents())
	assert.Equal(t, persisted.Subtotal().Cents(), persisted.Total().Cents())
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOrderCommand{} // not constructed properly

	factory := new(MockOrderUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, testFeePolicy(t), &recordingPublisher{})

	require.Error(t, h.Handle(ctx, cmd))
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateCommand(t, order.DeliveryTypeDelivery)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := &recordingPublisher{}

	h := commands.NewCreateOrderCommandHandler(factory, testFeePolicy(t), publisher)
	err := h.Handle(ctx, cmd)

	require.Error(t, err)
	// No event leaks for a rolled-back order.
	assert.Empty(t, publisher.byKind(realtime.EventOrderCreated))
	uow.AssertExpectations(t)
}
