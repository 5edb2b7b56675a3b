//go:build unit

package commands

import (
	"strings"
	"testing"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/usecase/shared"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	j        *journal
	uow      *fakeUoW
	ledger   *fakeLedger
	redeemer *fakeRedeemer
	gateway  *fakeGateway
	clock    *clock.MockClock
	checkout config.CheckoutConfig
	cmd      OrderCommands

	p1, p2 uuid.UUID
	owner  order.Owner
	zoneID uuid.UUID
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		j:      &journal{},
		p1:     uuid.New(),
		p2:     uuid.New(),
		owner:  order.NewUserOwner(uuid.New()),
		zoneID: uuid.New(),
		clock:  clock.NewMockClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)),
	}

	cart := &shared.CartSnapshot{
		ID: uuid.New(),
		Lines: []shared.CartLine{
			{
				ProductID:      f.p1,
				CategoryID:     uuid.New(),
				SubCategoryID:  uuid.New(),
				BrandID:        uuid.New(),
				ProductName:    "Cotton Tee",
				SKUCode:        "TEE-BLK-M",
				Size:           "M",
				Color:          "black",
				Quantity:       2,
				UnitPriceCents: 5000,
				SubtotalCents:  10000,
			},
			{
				ProductID:      f.p2,
				CategoryID:     uuid.New(),
				SubCategoryID:  uuid.New(),
				BrandID:        uuid.New(),
				ProductName:    "Denim Jacket",
				SKUCode:        "DNM-BLU-L",
				Size:           "L",
				Color:          "blue",
				Quantity:       1,
				UnitPriceCents: 10000,
				SubtotalCents:  10000,
			},
		},
	}

	f.uow = &fakeUoW{
		tx: &fakeTx{
			orders:        &fakeOrderRepo{j: f.j},
			invoices:      &fakeInvoiceRepo{j: f.j},
			carts:         &fakeCartRepo{},
			notifications: &fakeNotificationRepo{},
		},
		reads: &fakeReads{cart: cart, delivery: 6000},
	}
	f.ledger = &fakeLedger{j: f.j}
	f.redeemer = &fakeRedeemer{j: f.j}
	f.gateway = &fakeGateway{
		session: &shared.GatewaySession{RedirectURL: "https://sandbox.securepay.example.com/session/abc", SessionKey: "abc"},
	}
	f.checkout = config.CheckoutConfig{Currency: "BDT", TaxRateBps: 0}
	f.rebuild()
	return f
}

func (f *checkoutFixture) rebuild() {
	f.cmd = NewOrderCommands(f.uow, f.ledger, f.redeemer, f.gateway, f.checkout, f.clock)
}

func (f *checkoutFixture) params(method order.PaymentMethod) CreateOrderParams {
	addr := order.Address{
		Name:     "Anika Rahman",
		Phone:    "+8801700000000",
		Email:    "anika@example.com",
		Line1:    "12 Gulshan Avenue",
		City:     "Dhaka",
		Postcode: "1212",
		Country:  "Bangladesh",
	}
	return CreateOrderParams{
		Owner:           f.owner,
		PaymentMethod:   method,
		DeliveryZoneID:  f.zoneID,
		ShippingAddress: addr,
		BillingAddress:  addr,
	}
}

func (f *checkoutFixture) withCoupon() *shared.CouponSnapshot {
	pct := 10.0
	capCents := int64(1500)
	snap := &shared.CouponSnapshot{
		ID:               uuid.New(),
		Code:             "SAVE10",
		PercentOff:       &pct,
		MaxOffCents:      &capCents,
		MinPurchaseCents: 0,
		StartAt:          f.clock.Now().Add(-time.Hour),
		EndAt:            f.clock.Now().Add(time.Hour),
		IsActive:         true,
	}
	f.uow.reads.coupon = snap
	return snap
}

func couponCode(code string) *string {
	return &code
}

func TestCreateOrder_CODHappyPath(t *testing.T) {
	f := newCheckoutFixture()

	res, err := f.cmd.CreateOrder(t.Context(), f.params(order.MethodCOD))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.OrderNumber, "ORD-20260315-"))
	assert.Len(t, res.TransactionID, 32)
	assert.Equal(t, order.StatusPending, res.Status)
	assert.Equal(t, order.PaymentPending, res.PaymentStatus)
	assert.Equal(t, order.MethodCOD, res.PaymentMethod)
	assert.Nil(t, res.RedirectURL)

	assert.Equal(t, int64(20000), res.Amounts.TotalCents)
	assert.Equal(t, int64(6000), res.Amounts.ShippingCents)
	assert.Equal(t, int64(26000), res.Amounts.FinalCents())

	// both lines reserved, order + invoice written, cart consumed
	want := []string{"reserve:" + f.p1.String(), "reserve:" + f.p2.String(), "create-order"}
	assert.Empty(t, cmp.Diff(want, f.j.entries))

	require.Len(t, f.uow.tx.orders.created, 1)
	assert.Len(t, f.uow.tx.orders.created[0].Lines(), 2)

	require.Len(t, f.uow.tx.invoices.created, 1)
	inv := f.uow.tx.invoices.created[0]
	assert.Equal(t, order.InvoiceUnpaid, inv.Status)
	assert.Equal(t, int64(26000), inv.AmountCents)
	assert.Equal(t, res.OrderNumber, inv.OrderNumber)

	assert.Len(t, f.uow.tx.carts.deletions, 1)
}

func TestCreateOrder_GatewayReturnsRedirectAndKeepsCart(t *testing.T) {
	f := newCheckoutFixture()
	f.withCoupon()

	p := f.params(order.MethodGateway)
	p.CouponCode = couponCode("SAVE10")

	res, err := f.cmd.CreateOrder(t.Context(), p)
	require.NoError(t, err)

	require.NotNil(t, res.RedirectURL)
	assert.Equal(t, "https://sandbox.securepay.example.com/session/abc", *res.RedirectURL)

	// 10% of 20000 is 2000, capped at 1500
	assert.Equal(t, int64(1500), res.Amounts.DiscountCents)
	assert.Equal(t, int64(24500), res.Amounts.FinalCents())

	require.NotNil(t, f.gateway.lastSessionReq)
	assert.Equal(t, res.TransactionID, f.gateway.lastSessionReq.TransactionID)
	assert.Equal(t, int64(24500), f.gateway.lastSessionReq.AmountCents)
	assert.Equal(t, "BDT", f.gateway.lastSessionReq.Currency)
	assert.Equal(t, int32(3), f.gateway.lastSessionReq.NumItems)

	// the cart must survive until the payment is confirmed
	assert.Empty(t, f.uow.tx.carts.deletions)
}

func TestCreateOrder_TaxAppliedToSubtotal(t *testing.T) {
	f := newCheckoutFixture()
	f.checkout.TaxRateBps = 500
	f.rebuild()

	res, err := f.cmd.CreateOrder(t.Context(), f.params(order.MethodCOD))
	require.NoError(t, err)

	assert.Equal(t, int64(1000), res.Amounts.TaxCents)
	assert.Equal(t, int64(27000), res.Amounts.FinalCents())
}

func TestCreateOrder_InsufficientStockRestocksEarlierLines(t *testing.T) {
	f := newCheckoutFixture()
	f.ledger.failSKU = &f.p2
	f.ledger.failErr = infra.WrapRepoErr("stock check failed", nil, infra.KindConflict)

	_, err := f.cmd.CreateOrder(t.Context(), f.params(order.MethodCOD))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	// only the first line committed, so only the first line is restocked
	want := []string{"reserve:" + f.p1.String(), "restock:" + f.p1.String()}
	assert.Empty(t, cmp.Diff(want, f.j.entries))

	assert.Empty(t, f.uow.tx.orders.created)
	assert.Empty(t, f.uow.tx.carts.deletions)
}

func TestCreateOrder_GatewayInitFailureUnwindsEverything(t *testing.T) {
	f := newCheckoutFixture()
	f.withCoupon()
	f.gateway.initErr = errors.New("connection refused")

	p := f.params(order.MethodGateway)
	p.CouponCode = couponCode("SAVE10")

	_, err := f.cmd.CreateOrder(t.Context(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGatewayUnavailable))

	// compensations run in exact reverse of the recorded steps
	want := []string{
		"reserve:" + f.p1.String(),
		"reserve:" + f.p2.String(),
		"redeem",
		"create-order",
		"delete-invoice",
		"delete-order",
		"release",
		"restock:" + f.p2.String(),
		"restock:" + f.p1.String(),
	}
	assert.Empty(t, cmp.Diff(want, f.j.entries))

	require.Len(t, f.uow.tx.orders.created, 1)
	assert.Equal(t, f.uow.tx.orders.created[0].ID(), f.uow.tx.orders.deleted[0])
}

func TestCreateOrder_CouponIneligibleRollsBackStock(t *testing.T) {
	f := newCheckoutFixture()
	snap := f.withCoupon()
	snap.MinPurchaseCents = 50000

	p := f.params(order.MethodCOD)
	p.CouponCode = couponCode("SAVE10")

	_, err := f.cmd.CreateOrder(t.Context(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouponIneligible))
	assert.True(t, errors.Is(err, coupon.ErrBelowMinPurchase))

	want := []string{
		"reserve:" + f.p1.String(),
		"reserve:" + f.p2.String(),
		"restock:" + f.p2.String(),
		"restock:" + f.p1.String(),
	}
	assert.Empty(t, cmp.Diff(want, f.j.entries))
}

func TestCreateOrder_RedeemRaceLostIsIneligible(t *testing.T) {
	f := newCheckoutFixture()
	f.withCoupon()
	f.redeemer.reject = true

	p := f.params(order.MethodCOD)
	p.CouponCode = couponCode("SAVE10")

	_, err := f.cmd.CreateOrder(t.Context(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouponIneligible))
	assert.True(t, errors.Is(err, coupon.ErrUsageCapReached))
	assert.Empty(t, f.uow.tx.orders.created)
}

func TestCreateOrder_CouponNotFound(t *testing.T) {
	f := newCheckoutFixture()
	f.uow.reads.couponErr = infra.WrapRepoErr("coupon lookup", nil, infra.KindNotFound)

	p := f.params(order.MethodCOD)
	p.CouponCode = couponCode("NOPE123")

	_, err := f.cmd.CreateOrder(t.Context(), p)
	assert.True(t, errors.Is(err, ErrCouponNotFound))

	// reserved stock is returned before the error surfaces
	want := []string{
		"reserve:" + f.p1.String(),
		"reserve:" + f.p2.String(),
		"restock:" + f.p2.String(),
		"restock:" + f.p1.String(),
	}
	assert.Empty(t, cmp.Diff(want, f.j.entries))
}

func TestCreateOrder_DeliveryZoneUnknown(t *testing.T) {
	f := newCheckoutFixture()
	f.uow.reads.deliveryErr = infra.WrapRepoErr("delivery charge lookup", nil, infra.KindNotFound)

	_, err := f.cmd.CreateOrder(t.Context(), f.params(order.MethodCOD))
	assert.True(t, errors.Is(err, ErrDeliveryChargeNotFound))

	want := []string{
		"reserve:" + f.p1.String(),
		"reserve:" + f.p2.String(),
		"restock:" + f.p2.String(),
		"restock:" + f.p1.String(),
	}
	assert.Empty(t, cmp.Diff(want, f.j.entries))
}

func TestCreateOrder_CartMissing(t *testing.T) {
	f := newCheckoutFixture()
	f.uow.reads.cartErr = infra.WrapRepoErr("cart lookup", nil, infra.KindNotFound)

	_, err := f.cmd.CreateOrder(t.Context(), f.params(order.MethodCOD))
	assert.True(t, errors.Is(err, ErrCartNotFound))
	assert.Empty(t, f.j.entries)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	f.uow.reads.cart = &shared.CartSnapshot{ID: uuid.New()}

	_, err := f.cmd.CreateOrder(t.Context(), f.params(order.MethodCOD))
	assert.True(t, errors.Is(err, ErrCartNotFound))
}

func TestCreateOrder_RejectsInvalidInput(t *testing.T) {
	f := newCheckoutFixture()

	p := f.params(order.MethodCOD)
	p.Owner = order.Owner{}
	_, err := f.cmd.CreateOrder(t.Context(), p)
	assert.True(t, errors.Is(err, ErrDomainValidation))

	p = f.params("BITCOIN")
	_, err = f.cmd.CreateOrder(t.Context(), p)
	assert.True(t, errors.Is(err, ErrDomainValidation))
}

func TestCreateOrder_InvoiceFailureDoesNotFailCheckout(t *testing.T) {
	f := newCheckoutFixture()
	f.uow.tx.invoices.createErr = errors.New("duplicate key")

	res, err := f.cmd.CreateOrder(t.Context(), f.params(order.MethodCOD))
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderNumber)
	assert.Len(t, f.uow.tx.carts.deletions, 1)
}
