package shared

import (
	"time"

	"commerce-core/internal/domain/order"

	"github.com/google/uuid"
)

// Write-side snapshots prevent dependency on read-side query types (CQRS separation)

// CartLine is one line of the shopper's cart as written by the cart service.
// Catalog identities ride along for coupon applicability checks.
type CartLine struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	CategoryID     uuid.UUID
	SubCategoryID  uuid.UUID
	BrandID        uuid.UUID
	ProductName    string
	SKUCode        string
	Size           string
	Color          string
	Quantity       int32
	UnitPriceCents int64
	DiscountCents  int64
	SubtotalCents  int64
}

func (l CartLine) SKU() order.SKU {
	return order.SKU{ProductID: l.ProductID, VariantID: l.VariantID}
}

type CartSnapshot struct {
	ID    uuid.UUID
	Lines []CartLine
}

func (c *CartSnapshot) SubtotalCents() int64 {
	var sum int64
	for _, l := range c.Lines {
		sum += l.SubtotalCents
	}
	return sum
}

type CouponSnapshot struct {
	ID                uuid.UUID
	Code              string
	AmountOffCents    *int64
	PercentOff        *float64
	MaxOffCents       *int64
	MinPurchaseCents  int64
	StartAt           time.Time
	EndAt             time.Time
	IsActive          bool
	UsageLimitTotal   int32
	UsageLimitPerUser int32
	TotalUsed         int32
	Products          []uuid.UUID
	Categories        []uuid.UUID
	SubCategories     []uuid.UUID
	Brands            []uuid.UUID
}

// OrderSnapshot is the reconciler's view of a persisted order, keyed by
// transaction id.
type OrderSnapshot struct {
	ID            uuid.UUID
	OrderNumber   string
	TransactionID string
	OwnerUserID   *uuid.UUID
	OwnerGuestID  *string
	Status        order.Status
	PaymentStatus order.PaymentStatus
	PaymentMethod order.PaymentMethod
	FinalCents    int64
	CustomerEmail string
	CustomerPhone string
}

func (s *OrderSnapshot) Owner() order.Owner {
	if s.OwnerUserID != nil {
		return order.NewUserOwner(*s.OwnerUserID)
	}
	if s.OwnerGuestID != nil {
		return order.NewGuestOwner(*s.OwnerGuestID)
	}
	return order.Owner{}
}

// GatewaySessionRequest initializes a hosted payment page session keyed by
// the order's transaction id.
type GatewaySessionRequest struct {
	TransactionID    string
	AmountCents      int64
	Currency         string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	ShippingAddress  string
	ShippingCity     string
	ShippingPostcode string
	ShippingCountry  string
	NumItems         int32
}

type GatewaySession struct {
	RedirectURL string
	SessionKey  string
}

// GatewayValidation is the provider's answer for a val_id lookup. Status is
// the provider's vocabulary; the reconciler maps it to a payment outcome.
type GatewayValidation struct {
	Status        string
	TransactionID string
	ValID         string
	AmountCents   int64
	Currency      string
}

type NotificationJob struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	RunAt     time.Time
	Attempts  int32
	Status    string
	CreatedAt time.Time
}
