//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"shuttlecourt/internal/domain/booking"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineDeps struct {
	orders  *fakeOrderRepo
	catalog *fakeCatalog
	stock   *fakeStock
}

func newLineCommands(t *testing.T) (OrderLineCommands, *lineDeps) {
	t.Helper()
	deps := &lineDeps{
		orders:  newFakeOrderRepo(),
		catalog: newFakeCatalog(),
		stock:   &fakeStock{},
	}
	cmd := NewOrderLineCommands(deps.orders, deps.catalog, deps.stock, &fakeTx{})
	return cmd, deps
}

func seedPendingOrder(t *testing.T, deps *lineDeps) (*order.Order, uuid.UUID) {
	t.Helper()
	slot, err := booking.NewSlot(testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	b, err := booking.NewBooking(uuid.New(), uuid.New(), []booking.Slot{slot}, booking.NewNote(""), testNow)
	require.NoError(t, err)

	o, err := order.NewOrder(b.ID(), b.CustomerID(), 100_000, 10)
	require.NoError(t, err)
	deps.orders.add(o)
	return o, b.Occurrences()[0].ID()
}

func TestAddItem(t *testing.T) {
	productID := uuid.New()

	t.Run("reserves stock and freezes the unit price", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, occID := seedPendingOrder(t, deps)
		deps.catalog.products[productID] = &ProductSnapshot{ID: productID, Name: "grip tape", UnitPrice: 25_000}

		lineID, err := cmd.AddItem(context.Background(), AddItemParams{
			BookingID:    o.BookingID(),
			OccurrenceID: occID,
			ProductID:    productID,
			Quantity:     3,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, lineID)

		assert.Equal(t, []uuid.UUID{productID}, deps.stock.reserved)
		require.Len(t, deps.orders.insertedItems, 1)
		assert.Equal(t, int64(75_000), deps.orders.insertedItems[0].Amount().Int64())
		assert.Equal(t, int64(75_000), o.ItemsSubtotal().Int64())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, occID := seedPendingOrder(t, deps)
		deps.catalog.products[productID] = &ProductSnapshot{ID: productID, Name: "grip tape", UnitPrice: 25_000}
		deps.stock.reserveErr = infra.WrapRepoErr(infra.KindConflict, "stock exhausted", nil)

		_, err := cmd.AddItem(context.Background(), AddItemParams{
			BookingID: o.BookingID(), OccurrenceID: occID, ProductID: productID, Quantity: 99,
		})
		assertErrIs(t, err, errs.ErrInsufficientStock)
		assert.Empty(t, deps.orders.insertedItems)
	})

	t.Run("lines are frozen once the order leaves pending", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, occID := seedPendingOrder(t, deps)
		deps.catalog.products[productID] = &ProductSnapshot{ID: productID, Name: "grip tape", UnitPrice: 25_000}
		require.NoError(t, o.Settle(100_000, 0, 0, nil))

		_, err := cmd.AddItem(context.Background(), AddItemParams{
			BookingID: o.BookingID(), OccurrenceID: occID, ProductID: productID, Quantity: 1,
		})
		assertErrIs(t, err, errs.ErrOrderNotPending)
	})

	t.Run("unknown order", func(t *testing.T) {
		cmd, _ := newLineCommands(t)

		_, err := cmd.AddItem(context.Background(), AddItemParams{
			BookingID: uuid.New(), OccurrenceID: uuid.New(), ProductID: productID, Quantity: 1,
		})
		assertErrIs(t, err, errs.ErrOrderNotFound)
	})
}

func TestAddService(t *testing.T) {
	serviceID := uuid.New()

	t.Run("prices pro rata by minutes", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, occID := seedPendingOrder(t, deps)
		deps.catalog.services[serviceID] = &ServiceSnapshot{ID: serviceID, Name: "coaching", HourlyRate: 120_000}

		_, err := cmd.AddService(context.Background(), AddServiceParams{
			BookingID:    o.BookingID(),
			OccurrenceID: occID,
			ServiceID:    serviceID,
			Minutes:      90,
		})
		require.NoError(t, err)

		require.Len(t, deps.orders.insertedSvcs, 1)
		assert.Equal(t, int64(180_000), deps.orders.insertedSvcs[0].Amount().Int64())
	})

	t.Run("unknown service", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, occID := seedPendingOrder(t, deps)

		_, err := cmd.AddService(context.Background(), AddServiceParams{
			BookingID: o.BookingID(), OccurrenceID: occID, ServiceID: uuid.New(), Minutes: 60,
		})
		assertErrIs(t, err, errs.ErrLineNotFound)
	})
}

func TestRemoveLines(t *testing.T) {
	productID := uuid.New()
	serviceID := uuid.New()

	t.Run("removing an item releases its stock", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, occID := seedPendingOrder(t, deps)
		deps.catalog.products[productID] = &ProductSnapshot{ID: productID, Name: "grip tape", UnitPrice: 25_000}

		lineID, err := cmd.AddItem(context.Background(), AddItemParams{
			BookingID: o.BookingID(), OccurrenceID: occID, ProductID: productID, Quantity: 2,
		})
		require.NoError(t, err)

		require.NoError(t, cmd.RemoveItem(context.Background(), o.BookingID(), lineID))
		assert.Equal(t, []uuid.UUID{productID}, deps.stock.released)
		assert.Equal(t, []uuid.UUID{lineID}, deps.orders.deletedLines)
		assert.Zero(t, o.ItemsSubtotal().Int64())
	})

	t.Run("removing a service line", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, occID := seedPendingOrder(t, deps)
		deps.catalog.services[serviceID] = &ServiceSnapshot{ID: serviceID, Name: "coaching", HourlyRate: 120_000}

		lineID, err := cmd.AddService(context.Background(), AddServiceParams{
			BookingID: o.BookingID(), OccurrenceID: occID, ServiceID: serviceID, Minutes: 60,
		})
		require.NoError(t, err)

		require.NoError(t, cmd.RemoveService(context.Background(), o.BookingID(), lineID))
		assert.Empty(t, o.Services())
	})

	t.Run("missing line", func(t *testing.T) {
		cmd, deps := newLineCommands(t)
		o, _ := seedPendingOrder(t, deps)

		err := cmd.RemoveItem(context.Background(), o.BookingID(), uuid.New())
		assertErrIs(t, err, errs.ErrLineNotFound)
	})
}
