package builder

import (
	"time"

	"commerce-core/internal/domain/coupon"

	"github.com/google/uuid"
)

// CouponBuilder builds valid coupon params by default; tests mutate single
// fields to probe one rule at a time.
type CouponBuilder struct {
	params coupon.Params
}

func NewCouponBuilder() *CouponBuilder {
	percent := 10.0
	return &CouponBuilder{
		params: coupon.Params{
			ID:                uuid.New(),
			Code:              "SUMMER10",
			PercentOff:        &percent,
			MinPurchaseCents:  0,
			StartAt:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndAt:             time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
			IsActive:          true,
			UsageLimitTotal:   0,
			UsageLimitPerUser: 0,
			TotalUsed:         0,
		},
	}
}

func (b *CouponBuilder) WithCode(code string) *CouponBuilder {
	b.params.Code = code
	return b
}

func (b *CouponBuilder) WithFixedDiscount(amountOffCents int64) *CouponBuilder {
	b.params.PercentOff = nil
	b.params.MaxOffCents = nil
	b.params.AmountOffCents = &amountOffCents
	return b
}

func (b *CouponBuilder) WithPercentDiscount(percent float64, maxOffCents *int64) *CouponBuilder {
	b.params.AmountOffCents = nil
	b.params.PercentOff = &percent
	b.params.MaxOffCents = maxOffCents
	return b
}

func (b *CouponBuilder) WithMinPurchase(cents int64) *CouponBuilder {
	b.params.MinPurchaseCents = cents
	return b
}

func (b *CouponBuilder) WithWindow(start, end time.Time) *CouponBuilder {
	b.params.StartAt = start
	b.params.EndAt = end
	return b
}

func (b *CouponBuilder) Inactive() *CouponBuilder {
	b.params.IsActive = false
	return b
}

func (b *CouponBuilder) WithUsage(totalUsed, limitTotal, limitPerUser int32) *CouponBuilder {
	b.params.TotalUsed = totalUsed
	b.params.UsageLimitTotal = limitTotal
	b.params.UsageLimitPerUser = limitPerUser
	return b
}

func (b *CouponBuilder) WithProducts(ids ...uuid.UUID) *CouponBuilder {
	b.params.Products = ids
	return b
}

func (b *CouponBuilder) WithCategories(ids ...uuid.UUID) *CouponBuilder {
	b.params.Categories = ids
	return b
}

func (b *CouponBuilder) WithSubCategories(ids ...uuid.UUID) *CouponBuilder {
	b.params.SubCategories = ids
	return b
}

func (b *CouponBuilder) WithBrands(ids ...uuid.UUID) *CouponBuilder {
	b.params.Brands = ids
	return b
}

func (b *CouponBuilder) BuildDomain() (*coupon.Coupon, error) {
	return coupon.NewCoupon(b.params)
}
