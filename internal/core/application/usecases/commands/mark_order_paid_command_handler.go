package commands

import (
	"context"
)

// MarkOrderPaidCommandHandler persists payment settlement. Settlement is
// idempotent: repeated callbacks for the same order are harmless.
type MarkOrderPaidCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *OrderLocks
}

// NewMarkOrderPaidCommandHandler creates a handler for payment callbacks.
func NewMarkOrderPaidCommandHandler(uowFactory OrderUoWFactory, locks *OrderLocks) MarkOrderPaidCommandHandler {
	return MarkOrderPaidCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
	}
}

// Handle processes a payment settlement callback.
func (h *MarkOrderPaidCommandHandler) Handle(ctx context.Context, cmd MarkOrderPaidCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	unlock := h.locks.Lock(cmd.OrderID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	aggregate.MarkPaid()

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
