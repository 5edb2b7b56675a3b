package commands

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// InventoryLedger mutates per-SKU stock and sales counters. Reserve is a
// single conditional write (check and decrement in one statement) so two
// concurrent checkouts can never both take the last unit. Restock is the
// compensating inverse.
type InventoryLedger interface {
	Reserve(ctx context.Context, sku order.SKU, quantity int32) error
	Restock(ctx context.Context, sku order.SKU, quantity int32) error
}

// CouponRedeemer commits a coupon use atomically with the cap re-check:
// false means a concurrent redemption took the last slot after Evaluate
// read a stale counter. Release is the compensating inverse.
type CouponRedeemer interface {
	Redeem(ctx context.Context, couponID uuid.UUID, owner order.Owner, usageLimitTotal, usageLimitPerUser int32) (bool, error)
	Release(ctx context.Context, couponID uuid.UUID, owner order.Owner) error
}

// PaymentGateway is the hosted payment page provider. ValidatePayment must
// be called for every completion signal; redirect parameters alone are
// attacker-influenceable.
type PaymentGateway interface {
	InitiateSession(ctx context.Context, req shared.GatewaySessionRequest) (*shared.GatewaySession, error)
	ValidatePayment(ctx context.Context, valID string) (*shared.GatewayValidation, error)
}
