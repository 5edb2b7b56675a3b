package order

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrOwnerUnset           = errors.New("order owner must be set")
	ErrOwnerAmbiguous       = errors.New("order owner cannot be both user and guest")
	ErrNegativeAmount       = errors.New("monetary amounts cannot be negative")
	ErrDiscountExceedsTotal = errors.New("discount cannot exceed order total")
	ErrEmptyLineItems       = errors.New("order must contain at least one line item")
	ErrInvalidQuantity      = errors.New("line item quantity must be positive")
)

// Owner identifies the shopper: exactly one of user id or guest id is set.
type Owner struct {
	userID  *uuid.UUID
	guestID *string
}

func NewUserOwner(userID uuid.UUID) Owner {
	return Owner{userID: &userID}
}

func NewGuestOwner(guestID string) Owner {
	return Owner{guestID: &guestID}
}

func (o Owner) Validate() error {
	if o.userID == nil && o.guestID == nil {
		return ErrOwnerUnset
	}
	if o.userID != nil && o.guestID != nil {
		return ErrOwnerAmbiguous
	}
	return nil
}

func (o Owner) UserID() *uuid.UUID { return o.userID }
func (o Owner) GuestID() *string   { return o.guestID }
func (o Owner) IsGuest() bool      { return o.guestID != nil }

// Breakdown is the monetary decomposition of an order. FinalCents is always
// derived, never stored independently.
type Breakdown struct {
	TotalCents    int64
	DiscountCents int64
	ShippingCents int64
	TaxCents      int64
}

func (b Breakdown) FinalCents() int64 {
	return b.TotalCents - b.DiscountCents + b.ShippingCents + b.TaxCents
}

func (b Breakdown) Validate() error {
	if b.TotalCents < 0 || b.DiscountCents < 0 || b.ShippingCents < 0 || b.TaxCents < 0 {
		return ErrNegativeAmount
	}
	if b.DiscountCents > b.TotalCents {
		return ErrDiscountExceedsTotal
	}
	return nil
}

// LineItem is a frozen snapshot of one cart line at assembly time. Catalog
// edits after the order is placed never alter it.
type LineItem struct {
	SKU            SKU
	ProductName    string
	SKUCode        string
	Size           string
	Color          string
	Quantity       int32
	UnitPriceCents int64
	TotalCents     int64
}

func (l LineItem) Validate() error {
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.UnitPriceCents < 0 || l.TotalCents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

type Address struct {
	Name     string
	Phone    string
	Email    string
	Line1    string
	Line2    string
	City     string
	Postcode string
	Country  string
}
