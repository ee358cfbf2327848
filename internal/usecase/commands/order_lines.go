package commands

import (
	"context"
	"errors"

	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/shared"

	"github.com/google/uuid"
)

type AddItemParams struct {
	BookingID    uuid.UUID
	OccurrenceID uuid.UUID
	ProductID    uuid.UUID
	Quantity     int
}

type AddServiceParams struct {
	BookingID    uuid.UUID
	OccurrenceID uuid.UUID
	ServiceID    uuid.UUID
	Minutes      int
}

type OrderLineCommands interface {
	AddItem(ctx context.Context, params AddItemParams) (uuid.UUID, error)
	AddService(ctx context.Context, params AddServiceParams) (uuid.UUID, error)
	RemoveItem(ctx context.Context, bookingID, lineID uuid.UUID) error
	RemoveService(ctx context.Context, bookingID, lineID uuid.UUID) error
}

type orderLineCommandsImpl struct {
	orders  OrderRepository
	catalog ProductCatalog
	stock   StockReserver
	tx      shared.TxManager
}

func NewOrderLineCommands(
	orders OrderRepository,
	catalog ProductCatalog,
	stock StockReserver,
	tx shared.TxManager,
) OrderLineCommands {
	return &orderLineCommandsImpl{
		orders:  orders,
		catalog: catalog,
		stock:   stock,
		tx:      tx,
	}
}

func (c *orderLineCommandsImpl) AddItem(ctx context.Context, params AddItemParams) (uuid.UUID, error) {
	var lineID uuid.UUID

	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.findPendingOrder(ctx, tx, params.BookingID)
		if err != nil {
			return err
		}

		product, err := c.catalog.FindProduct(ctx, tx, params.ProductID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrLineNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		// Reserve before pricing the line so a stock shortage never leaves
		// a priced line behind.
		if err := c.stock.Reserve(ctx, tx, params.ProductID, params.Quantity); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, errs.ErrInsufficientStock)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		item, err := o.AddItem(params.OccurrenceID, product.ID, product.Name, params.Quantity, money.Money(product.UnitPrice))
		if err != nil {
			return markOrderErr(err)
		}
		if err := c.orders.InsertItem(ctx, tx, o.ID(), item); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		lineID = item.ID()
		return nil
	})
	return lineID, err
}

func (c *orderLineCommandsImpl) AddService(ctx context.Context, params AddServiceParams) (uuid.UUID, error) {
	var lineID uuid.UUID

	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.findPendingOrder(ctx, tx, params.BookingID)
		if err != nil {
			return err
		}

		svc, err := c.catalog.FindService(ctx, tx, params.ServiceID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrLineNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		line, err := o.AddService(params.OccurrenceID, svc.ID, svc.Name, params.Minutes, money.Money(svc.HourlyRate))
		if err != nil {
			return markOrderErr(err)
		}
		if err := c.orders.InsertService(ctx, tx, o.ID(), line); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		lineID = line.ID()
		return nil
	})
	return lineID, err
}

func (c *orderLineCommandsImpl) RemoveItem(ctx context.Context, bookingID, lineID uuid.UUID) error {
	return c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.findPendingOrder(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		item, err := o.RemoveItem(lineID)
		if err != nil {
			return markOrderErr(err)
		}
		if err := c.orders.DeleteItem(ctx, tx, lineID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		// Removing a line puts its stock back on the shelf.
		if err := c.stock.Release(ctx, tx, item.ProductID(), item.Quantity()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *orderLineCommandsImpl) RemoveService(ctx context.Context, bookingID, lineID uuid.UUID) error {
	return c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.findPendingOrder(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if _, err := o.RemoveService(lineID); err != nil {
			return markOrderErr(err)
		}
		if err := c.orders.DeleteService(ctx, tx, lineID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *orderLineCommandsImpl) findPendingOrder(ctx context.Context, tx postgres.DBTX, bookingID uuid.UUID) (*order.Order, error) {
	o, err := c.orders.FindByBookingForUpdate(ctx, tx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return o, nil
}

func markOrderErr(err error) error {
	switch {
	case errors.Is(err, order.ErrNotPending):
		return errs.Mark(err, errs.ErrOrderNotPending)
	case errors.Is(err, order.ErrLineNotFound):
		return errs.Mark(err, errs.ErrLineNotFound)
	default:
		return err
	}
}
