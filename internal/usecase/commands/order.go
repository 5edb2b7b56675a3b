package commands

import (
	"context"
	"log/slog"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/token"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound            = errs.New("cart not found")
	ErrCouponNotFound          = errs.New("coupon not found")
	ErrCouponIneligible        = errs.New("coupon not eligible")
	ErrInsufficientStock       = errs.New("insufficient stock")
	ErrDeliveryChargeNotFound  = errs.New("delivery charge not found")
	ErrGatewayUnavailable      = errs.New("payment gateway unavailable")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
	ErrCompensationFailed      = errs.New("compensation failed")
)

type CreateOrderParams struct {
	Owner           order.Owner
	CouponCode      *string
	PaymentMethod   order.PaymentMethod
	DeliveryZoneID  uuid.UUID
	ShippingAddress order.Address
	BillingAddress  order.Address
}

type CreateOrderResult struct {
	OrderID       uuid.UUID
	OrderNumber   string
	TransactionID string
	Status        order.Status
	PaymentStatus order.PaymentStatus
	PaymentMethod order.PaymentMethod
	Amounts       order.Breakdown
	// RedirectURL is set only for gateway payment: the hosted page the
	// shopper must be sent to.
	RedirectURL *string
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, p CreateOrderParams) (*CreateOrderResult, error)
}

type orderCommandsImpl struct {
	uow      shared.UnitOfWork
	ledger   InventoryLedger
	redeemer CouponRedeemer
	gateway  PaymentGateway
	checkout config.CheckoutConfig
	clock    clock.Clock
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	ledger InventoryLedger,
	redeemer CouponRedeemer,
	gateway PaymentGateway,
	checkout config.CheckoutConfig,
	clk clock.Clock,
) OrderCommands {
	return &orderCommandsImpl{
		uow:      uow,
		ledger:   ledger,
		redeemer: redeemer,
		gateway:  gateway,
		checkout: checkout,
		clock:    clk,
	}
}

// CreateOrder turns a cart snapshot into a persisted order + invoice.
// Stock and coupon counters are committed by individual conditional writes,
// each paired with a compensation; any later failure (including gateway
// session init) unwinds them in reverse before the error surfaces.
func (c *orderCommandsImpl) CreateOrder(ctx context.Context, p CreateOrderParams) (*CreateOrderResult, error) {
	if err := p.Owner.Validate(); err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}
	if !p.PaymentMethod.Valid() {
		return nil, errs.Mark(order.ErrInvalidPaymentMethod, ErrDomainValidation)
	}

	cart, err := c.uow.Reads().CartByOwner(ctx, p.Owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if len(cart.Lines) == 0 {
		return nil, ErrCartNotFound
	}

	saga := NewSaga()

	if err := c.reserveStock(ctx, saga, cart); err != nil {
		return nil, c.failWith(ctx, saga, err)
	}

	subtotal := cart.SubtotalCents()

	discount, couponID, err := c.applyCoupon(ctx, saga, p, cart, subtotal)
	if err != nil {
		return nil, c.failWith(ctx, saga, err)
	}

	shipping, err := c.uow.Reads().DeliveryChargeByZone(ctx, p.DeliveryZoneID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, c.failWith(ctx, saga, ErrDeliveryChargeNotFound)
		}
		return nil, c.failWith(ctx, saga, errs.Mark(err, ErrDatabaseOperationFailed))
	}

	entity, err := c.assemble(p, cart, subtotal, discount, shipping, couponID)
	if err != nil {
		return nil, c.failWith(ctx, saga, errs.Mark(err, ErrDomainValidation))
	}

	if err := c.persistOrder(ctx, saga, entity); err != nil {
		return nil, c.failWith(ctx, saga, err)
	}

	c.persistInvoice(ctx, entity)

	result := &CreateOrderResult{
		OrderID:       entity.ID(),
		OrderNumber:   entity.OrderNumber(),
		TransactionID: entity.TransactionID(),
		Status:        entity.Status(),
		PaymentStatus: entity.PaymentStatus(),
		PaymentMethod: entity.PaymentMethod(),
		Amounts:       entity.Amounts(),
	}

	if entity.PaymentMethod() == order.MethodCOD {
		// COD settles at delivery; the cart is consumed right away.
		c.deleteCart(ctx, p.Owner)
		return result, nil
	}

	// Gateway payment: cart deletion is deferred until the reconciler
	// confirms, so an abandoned hosted page can be retried.
	session, err := c.gateway.InitiateSession(ctx, c.sessionRequest(entity, cart))
	if err != nil {
		return nil, c.failWith(ctx, saga, errs.Mark(err, ErrGatewayUnavailable))
	}

	result.RedirectURL = &session.RedirectURL
	return result, nil
}

// failWith unwinds the saga before surfacing err; the caller never observes
// a failed order with committed stock or coupon side effects.
func (c *orderCommandsImpl) failWith(ctx context.Context, saga *Saga, err error) error {
	if compErr := saga.Compensate(ctx); compErr != nil {
		slog.Error("order creation rollback incomplete", "error", compErr.Error())
	}
	return err
}

func (c *orderCommandsImpl) reserveStock(ctx context.Context, saga *Saga, cart *shared.CartSnapshot) error {
	for _, line := range cart.Lines {
		sku := line.SKU()
		if err := c.ledger.Reserve(ctx, sku, line.Quantity); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, ErrInsufficientStock)
			}
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrInsufficientStock)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		line := line
		saga.Add("restock "+line.ProductName, func(ctx context.Context) error {
			return c.ledger.Restock(ctx, line.SKU(), line.Quantity)
		})
	}
	return nil
}

func (c *orderCommandsImpl) applyCoupon(
	ctx context.Context,
	saga *Saga,
	p CreateOrderParams,
	cart *shared.CartSnapshot,
	subtotal int64,
) (int64, *uuid.UUID, error) {
	if p.CouponCode == nil {
		return 0, nil, nil
	}

	snap, err := c.uow.Reads().CouponByCode(ctx, *p.CouponCode)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return 0, nil, ErrCouponNotFound
		}
		return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	priorUses, err := c.uow.Reads().CouponUses(ctx, snap.ID, p.Owner)
	if err != nil {
		return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	entity, err := couponFromSnapshot(snap)
	if err != nil {
		return 0, nil, errs.Mark(err, ErrCouponIneligible)
	}

	discount, err := entity.Evaluate(lineRefs(cart), subtotal, priorUses, c.clock.Now())
	if err != nil {
		return 0, nil, errs.Mark(err, ErrCouponIneligible)
	}

	// Evaluate read a point-in-time counter; Redeem re-checks the caps in
	// the same statement that increments them.
	redeemed, err := c.redeemer.Redeem(ctx, snap.ID, p.Owner, snap.UsageLimitTotal, snap.UsageLimitPerUser)
	if err != nil {
		return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !redeemed {
		return 0, nil, errs.Mark(coupon.ErrUsageCapReached, ErrCouponIneligible)
	}

	couponID := snap.ID
	saga.Add("release coupon "+snap.Code, func(ctx context.Context) error {
		return c.redeemer.Release(ctx, couponID, p.Owner)
	})

	return discount, &couponID, nil
}

func (c *orderCommandsImpl) assemble(
	p CreateOrderParams,
	cart *shared.CartSnapshot,
	subtotal, discount, shipping int64,
	couponID *uuid.UUID,
) (*order.Order, error) {
	now := c.clock.Now()

	orderNumber, err := token.NewOrderNumber(now)
	if err != nil {
		return nil, err
	}
	transactionID, err := token.NewTransactionID()
	if err != nil {
		return nil, err
	}

	tax := subtotal * c.checkout.TaxRateBps / 10000

	lines := make([]order.LineItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, order.LineItem{
			SKU:            l.SKU(),
			ProductName:    l.ProductName,
			SKUCode:        l.SKUCode,
			Size:           l.Size,
			Color:          l.Color,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.SubtotalCents,
		})
	}

	return order.NewOrder(
		orderNumber,
		p.Owner,
		p.PaymentMethod,
		transactionID,
		order.Breakdown{
			TotalCents:    subtotal,
			DiscountCents: discount,
			ShippingCents: shipping,
			TaxCents:      tax,
		},
		lines,
		p.ShippingAddress,
		p.BillingAddress,
		couponID,
		now,
	)
}

func (c *orderCommandsImpl) persistOrder(ctx context.Context, saga *Saga, entity *order.Order) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, createErr := tx.Orders().Create(ctx, tx.DB(), entity)
		return createErr
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	orderID := entity.ID()
	saga.Add("delete order "+entity.OrderNumber(), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := tx.Invoices().DeleteByOrderID(ctx, tx.DB(), orderID); err != nil {
				return err
			}
			return tx.Orders().Delete(ctx, tx.DB(), orderID)
		})
	})
	return nil
}

// persistInvoice is best-effort: the invoice is derivable from the order, so
// a failure here leaves the order standing and is logged as a
// reconciliation gap rather than failing checkout.
func (c *orderCommandsImpl) persistInvoice(ctx context.Context, entity *order.Order) {
	inv := order.DeriveInvoice(entity)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Invoices().Create(ctx, tx.DB(), inv)
	})
	if err != nil {
		slog.Warn("invoice creation failed; order stands without invoice",
			"order_number", entity.OrderNumber(),
			"error", err.Error())
	}
}

func (c *orderCommandsImpl) deleteCart(ctx context.Context, owner order.Owner) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Carts().DeleteByOwner(ctx, tx.DB(), owner)
	})
	if err != nil {
		slog.Warn("cart deletion failed after order creation", "error", err.Error())
	}
}

func (c *orderCommandsImpl) sessionRequest(entity *order.Order, cart *shared.CartSnapshot) shared.GatewaySessionRequest {
	ship := entity.ShippingAddress()

	var numItems int32
	for _, l := range cart.Lines {
		numItems += l.Quantity
	}

	return shared.GatewaySessionRequest{
		TransactionID:    entity.TransactionID(),
		AmountCents:      entity.Amounts().FinalCents(),
		Currency:         c.checkout.Currency,
		CustomerName:     ship.Name,
		CustomerEmail:    ship.Email,
		CustomerPhone:    ship.Phone,
		ShippingAddress:  ship.Line1,
		ShippingCity:     ship.City,
		ShippingPostcode: ship.Postcode,
		ShippingCountry:  ship.Country,
		NumItems:         numItems,
	}
}

func couponFromSnapshot(s *shared.CouponSnapshot) (*coupon.Coupon, error) {
	return coupon.NewCoupon(coupon.Params{
		ID:                s.ID,
		Code:              s.Code,
		AmountOffCents:    s.AmountOffCents,
		PercentOff:        s.PercentOff,
		MaxOffCents:       s.MaxOffCents,
		MinPurchaseCents:  s.MinPurchaseCents,
		StartAt:           s.StartAt,
		EndAt:             s.EndAt,
		IsActive:          s.IsActive,
		UsageLimitTotal:   s.UsageLimitTotal,
		UsageLimitPerUser: s.UsageLimitPerUser,
		TotalUsed:         s.TotalUsed,
		Products:          s.Products,
		Categories:        s.Categories,
		SubCategories:     s.SubCategories,
		Brands:            s.Brands,
	})
}

func lineRefs(cart *shared.CartSnapshot) []coupon.LineRef {
	refs := make([]coupon.LineRef, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		refs = append(refs, coupon.LineRef{
			ProductID:     l.ProductID,
			CategoryID:    l.CategoryID,
			SubCategoryID: l.SubCategoryID,
			BrandID:       l.BrandID,
		})
	}
	return refs
}
