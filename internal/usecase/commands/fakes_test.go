//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"shuttlecourt/internal/domain/booking"
	domainmoney "shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/domain/voucher"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Hand-rolled fakes; commands only see the port interfaces so plain structs
// with injectable errors cover every path without a mock framework.

func amt(v int64) domainmoney.Money {
	return domainmoney.Money(v)
}

// assertErrIs matches sentinels attached as marks, which the plain
// errors.Is walk behind assert.ErrorIs cannot see.
func assertErrIs(t *testing.T, err error, ref error) {
	t.Helper()
	assert.True(t, errs.Is(err, ref), "want %v in error chain, got %v", ref, err)
}

type fakeTx struct {
	beginErr error
}

func (f *fakeTx) Within(ctx context.Context, fn func(ctx context.Context, tx postgres.DBTX) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(ctx, nil)
}

type fakeCourtRepo struct {
	snapshot *CourtSnapshot
	err      error
}

func (f *fakeCourtRepo) FindByID(ctx context.Context, id uuid.UUID) (*CourtSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type fakeBookingRepo struct {
	bookings    map[uuid.UUID]*booking.Booking
	occurrences map[uuid.UUID]*booking.Occurrence
	dueIDs      []uuid.UUID

	createErr error
	findErr   error

	created        []*booking.Booking
	savedStatus    []*booking.Booking
	savedOccStatus []*booking.Occurrence
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:    map[uuid.UUID]*booking.Booking{},
		occurrences: map[uuid.UUID]*booking.Occurrence{},
	}
}

func (f *fakeBookingRepo) add(b *booking.Booking) {
	f.bookings[b.ID()] = b
	for _, occ := range b.Occurrences() {
		f.occurrences[occ.ID()] = occ
	}
}

func (f *fakeBookingRepo) Create(ctx context.Context, tx postgres.DBTX, b *booking.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, b)
	f.add(b)
	return nil
}

func (f *fakeBookingRepo) FindByIDForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*booking.Booking, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "booking not found", nil)
	}
	return b, nil
}

func (f *fakeBookingRepo) FindOccurrenceForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*booking.Occurrence, error) {
	occ, ok := f.occurrences[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "occurrence not found", nil)
	}
	return occ, nil
}

func (f *fakeBookingRepo) SaveStatus(ctx context.Context, tx postgres.DBTX, b *booking.Booking) error {
	f.savedStatus = append(f.savedStatus, b)
	return nil
}

func (f *fakeBookingRepo) SaveOccurrenceStatus(ctx context.Context, tx postgres.DBTX, o *booking.Occurrence) error {
	f.savedOccStatus = append(f.savedOccStatus, o)
	return nil
}

func (f *fakeBookingRepo) ListDueOccurrenceIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	return f.dueIDs, nil
}

type fakeOrderRepo struct {
	byID      map[uuid.UUID]*order.Order
	byBooking map[uuid.UUID]*order.Order
	holdIDs   []uuid.UUID

	createErr     error
	settlementErr error

	created         []*order.Order
	savedSettlement []*order.Order
	savedStatus     []*order.Order
	attachedHolds   []string
	insertedItems   []*order.Item
	insertedSvcs    []*order.ServiceLine
	deletedLines    []uuid.UUID
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byID:      map[uuid.UUID]*order.Order{},
		byBooking: map[uuid.UUID]*order.Order{},
	}
}

func (f *fakeOrderRepo) add(o *order.Order) {
	f.byID[o.ID()] = o
	f.byBooking[o.BookingID()] = o
}

func (f *fakeOrderRepo) Create(ctx context.Context, tx postgres.DBTX, o *order.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, o)
	f.add(o)
	return nil
}

func (f *fakeOrderRepo) FindByIDForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*order.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "order not found", nil)
	}
	return o, nil
}

func (f *fakeOrderRepo) FindByBookingForUpdate(ctx context.Context, tx postgres.DBTX, bookingID uuid.UUID) (*order.Order, error) {
	o, ok := f.byBooking[bookingID]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "order not found", nil)
	}
	return o, nil
}

func (f *fakeOrderRepo) InsertItem(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID, item *order.Item) error {
	f.insertedItems = append(f.insertedItems, item)
	return nil
}

func (f *fakeOrderRepo) InsertService(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID, line *order.ServiceLine) error {
	f.insertedSvcs = append(f.insertedSvcs, line)
	return nil
}

func (f *fakeOrderRepo) DeleteItem(ctx context.Context, tx postgres.DBTX, lineID uuid.UUID) error {
	f.deletedLines = append(f.deletedLines, lineID)
	return nil
}

func (f *fakeOrderRepo) DeleteService(ctx context.Context, tx postgres.DBTX, lineID uuid.UUID) error {
	f.deletedLines = append(f.deletedLines, lineID)
	return nil
}

func (f *fakeOrderRepo) SaveSettlement(ctx context.Context, tx postgres.DBTX, o *order.Order) error {
	if f.settlementErr != nil {
		return f.settlementErr
	}
	f.savedSettlement = append(f.savedSettlement, o)
	return nil
}

func (f *fakeOrderRepo) SaveStatus(ctx context.Context, tx postgres.DBTX, o *order.Order) error {
	f.savedStatus = append(f.savedStatus, o)
	return nil
}

func (f *fakeOrderRepo) AttachHold(ctx context.Context, tx postgres.DBTX, o *order.Order, holdID string, expiresAt time.Time) error {
	f.attachedHolds = append(f.attachedHolds, holdID)
	return nil
}

func (f *fakeOrderRepo) ListExpiredHoldOrderIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	return f.holdIDs, nil
}

type fakeVoucherRepo struct {
	vouchers    map[string]*voucher.Voucher
	redemptions int

	consumeErr error

	consumed []uuid.UUID
	released []uuid.UUID
	inserted []*voucher.Voucher
}

func newFakeVoucherRepo() *fakeVoucherRepo {
	return &fakeVoucherRepo{vouchers: map[string]*voucher.Voucher{}}
}

func (f *fakeVoucherRepo) FindByCode(ctx context.Context, tx postgres.DBTX, code string) (*voucher.Voucher, error) {
	v, ok := f.vouchers[code]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "voucher not found", nil)
	}
	return v, nil
}

func (f *fakeVoucherRepo) CountRedemptions(ctx context.Context, tx postgres.DBTX, voucherID, customerID uuid.UUID) (int, error) {
	return f.redemptions, nil
}

func (f *fakeVoucherRepo) ConsumeUsage(ctx context.Context, tx postgres.DBTX, v *voucher.Voucher, customerID, orderID uuid.UUID) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumed = append(f.consumed, orderID)
	return nil
}

func (f *fakeVoucherRepo) ReleaseUsage(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID) error {
	f.released = append(f.released, orderID)
	return nil
}

func (f *fakeVoucherRepo) Insert(ctx context.Context, tx postgres.DBTX, v *voucher.Voucher) error {
	f.inserted = append(f.inserted, v)
	return nil
}

type fakeCatalog struct {
	products map[uuid.UUID]*ProductSnapshot
	services map[uuid.UUID]*ServiceSnapshot
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[uuid.UUID]*ProductSnapshot{},
		services: map[uuid.UUID]*ServiceSnapshot{},
	}
}

func (f *fakeCatalog) FindProduct(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*ProductSnapshot, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "product not found", nil)
	}
	return p, nil
}

func (f *fakeCatalog) FindService(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*ServiceSnapshot, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "service not found", nil)
	}
	return s, nil
}

type fakeStock struct {
	reserveErr error

	reserved []uuid.UUID
	released []uuid.UUID
}

func (f *fakeStock) Reserve(ctx context.Context, tx postgres.DBTX, productID uuid.UUID, qty int) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved = append(f.reserved, productID)
	return nil
}

func (f *fakeStock) Release(ctx context.Context, tx postgres.DBTX, productID uuid.UUID, qty int) error {
	f.released = append(f.released, productID)
	return nil
}

type fakeCustomers struct {
	isNew      bool
	membership *uuid.UUID
}

func (f *fakeCustomers) IsNewCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	return f.isNew, nil
}

func (f *fakeCustomers) ActiveMembership(ctx context.Context, customerID uuid.UUID) (*uuid.UUID, error) {
	return f.membership, nil
}

type fakePayments struct {
	holdID     string
	holdErr    error
	confirmErr error

	holds     int
	confirmed []string
	cancelled []string
}

func (f *fakePayments) CreateHold(ctx context.Context, orderID uuid.UUID, amount int64, expiresAt time.Time) (string, error) {
	f.holds++
	if f.holdErr != nil {
		return "", f.holdErr
	}
	return f.holdID, nil
}

func (f *fakePayments) Confirm(ctx context.Context, holdID string) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, holdID)
	return nil
}

func (f *fakePayments) Cancel(ctx context.Context, holdID string) error {
	f.cancelled = append(f.cancelled, holdID)
	return nil
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) Notify(ctx context.Context, customerID uuid.UUID, event string, payload map[string]any) {
	f.events = append(f.events, event)
}

type fakeBookingQueries struct{}

func (fakeBookingQueries) GetByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	return &queries.BookingView{ID: id}, nil
}

func (fakeBookingQueries) ListByCourtAndDay(ctx context.Context, courtID uuid.UUID, day time.Time) ([]queries.BookingView, error) {
	return nil, nil
}

func (fakeBookingQueries) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]queries.BookingView, error) {
	return nil, nil
}

type fakeOrderQueries struct{}

func (fakeOrderQueries) GetByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	return &queries.OrderView{ID: id}, nil
}

func (fakeOrderQueries) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*queries.OrderView, error) {
	return &queries.OrderView{BookingID: bookingID}, nil
}

type fakeUserRepo struct {
	users     map[uuid.UUID]*user.User
	insertErr error
	inserted  []*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*user.User{}}
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email().String() == email {
			return u, nil
		}
	}
	return nil, infra.WrapRepoErr(infra.KindNotFound, "user not found", nil)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "user not found", nil)
	}
	return u, nil
}

func (f *fakeUserRepo) Insert(ctx context.Context, tx postgres.DBTX, u *user.User) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, existing := range f.users {
		if existing.Email() == u.Email() {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "email already exists", nil)
		}
	}
	f.users[u.ID()] = u
	f.inserted = append(f.inserted, u)
	return nil
}

type fakeCourtAdminRepo struct {
	courts []*CourtSnapshot
	rules  []PricingRuleSnapshot
}

func (f *fakeCourtAdminRepo) Insert(ctx context.Context, tx postgres.DBTX, c *CourtSnapshot) error {
	f.courts = append(f.courts, c)
	return nil
}

func (f *fakeCourtAdminRepo) InsertRule(ctx context.Context, tx postgres.DBTX, courtID uuid.UUID, r PricingRuleSnapshot) error {
	f.rules = append(f.rules, r)
	return nil
}

type fakeCacheInvalidator struct {
	invalidated []uuid.UUID
}

func (f *fakeCacheInvalidator) Invalidate(ctx context.Context, courtID uuid.UUID) error {
	f.invalidated = append(f.invalidated, courtID)
	return nil
}
