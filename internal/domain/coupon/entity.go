package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rejection reasons, ordered by the evaluation sequence. Each maps to a
// distinct user-facing sub-reason.
var (
	ErrInactive         = errors.New("coupon is inactive")
	ErrNotYetValid      = errors.New("coupon is not yet valid")
	ErrExpired          = errors.New("coupon has expired")
	ErrBelowMinPurchase = errors.New("cart subtotal is below the coupon minimum")
	ErrUsageCapReached  = errors.New("coupon total usage cap reached")
	ErrUserCapReached   = errors.New("coupon per-user usage cap reached")
	ErrNotApplicable    = errors.New("coupon does not apply to any cart line")
)

// LineRef carries the catalog identities of one cart line, used only for
// applicability checks.
type LineRef struct {
	ProductID     uuid.UUID
	CategoryID    uuid.UUID
	SubCategoryID uuid.UUID
	BrandID       uuid.UUID
}

type Coupon struct {
	id               uuid.UUID
	code             Code
	discount         Discount
	minPurchaseCents int64
	startAt          time.Time
	endAt            time.Time
	isActive         bool

	// 0 means uncapped
	usageLimitTotal   int32
	usageLimitPerUser int32
	totalUsed         int32

	// applicability allow-lists; an empty set places no restriction
	products      []uuid.UUID
	categories    []uuid.UUID
	subCategories []uuid.UUID
	brands        []uuid.UUID
}

type Params struct {
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

func NewCoupon(p Params) (*Coupon, error) {
	code, err := NewCode(p.Code)
	if err != nil {
		return nil, err
	}

	discount, err := NewDiscount(p.AmountOffCents, p.PercentOff, p.MaxOffCents)
	if err != nil {
		return nil, err
	}

	return &Coupon{
		id:                p.ID,
		code:              code,
		discount:          discount,
		minPurchaseCents:  p.MinPurchaseCents,
		startAt:           p.StartAt,
		endAt:             p.EndAt,
		isActive:          p.IsActive,
		usageLimitTotal:   p.UsageLimitTotal,
		usageLimitPerUser: p.UsageLimitPerUser,
		totalUsed:         p.TotalUsed,
		products:          p.Products,
		categories:        p.Categories,
		subCategories:     p.SubCategories,
		brands:            p.Brands,
	}, nil
}

// Evaluate runs the eligibility checks in order, each a hard stop, and
// returns the discount in cents. priorUserUses is the requester's count of
// prior redemptions of this coupon. The caller must redeem (increment the
// usage counter) in the same order-creation step; Evaluate itself reads only.
func (c *Coupon) Evaluate(lines []LineRef, subtotalCents int64, priorUserUses int32, now time.Time) (int64, error) {
	if !c.isActive {
		return 0, ErrInactive
	}
	if now.Before(c.startAt) {
		return 0, ErrNotYetValid
	}
	if now.After(c.endAt) {
		return 0, ErrExpired
	}
	if subtotalCents < c.minPurchaseCents {
		return 0, ErrBelowMinPurchase
	}
	if c.usageLimitTotal > 0 && c.totalUsed >= c.usageLimitTotal {
		return 0, ErrUsageCapReached
	}
	if c.usageLimitPerUser > 0 && priorUserUses >= c.usageLimitPerUser {
		return 0, ErrUserCapReached
	}
	if !c.applies(lines) {
		return 0, ErrNotApplicable
	}

	return c.discount.AmountFor(subtotalCents), nil
}

// applies checks the four allow-lists in fixed precedence order: products,
// categories, subCategories, brands. The first non-empty set containing a
// cart line wins. A coupon with no sets at all is universally applicable.
func (c *Coupon) applies(lines []LineRef) bool {
	if len(c.products) == 0 && len(c.categories) == 0 && len(c.subCategories) == 0 && len(c.brands) == 0 {
		return true
	}

	sets := []struct {
		ids []uuid.UUID
		key func(LineRef) uuid.UUID
	}{
		{c.products, func(l LineRef) uuid.UUID { return l.ProductID }},
		{c.categories, func(l LineRef) uuid.UUID { return l.CategoryID }},
		{c.subCategories, func(l LineRef) uuid.UUID { return l.SubCategoryID }},
		{c.brands, func(l LineRef) uuid.UUID { return l.BrandID }},
	}

	for _, set := range sets {
		if len(set.ids) == 0 {
			continue
		}
		allowed := make(map[uuid.UUID]struct{}, len(set.ids))
		for _, id := range set.ids {
			allowed[id] = struct{}{}
		}
		for _, line := range lines {
			if _, ok := allowed[set.key(line)]; ok {
				return true
			}
		}
	}
	return false
}

func (c *Coupon) ID() uuid.UUID            { return c.id }
func (c *Coupon) Code() Code               { return c.code }
func (c *Coupon) Discount() Discount       { return c.discount }
func (c *Coupon) MinPurchaseCents() int64  { return c.minPurchaseCents }
func (c *Coupon) UsageLimitTotal() int32   { return c.usageLimitTotal }
func (c *Coupon) UsageLimitPerUser() int32 { return c.usageLimitPerUser }
func (c *Coupon) TotalUsed() int32         { return c.totalUsed }
