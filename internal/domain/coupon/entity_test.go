//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalTime = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func mustBuild(t *testing.T, b *builder.CouponBuilder) *coupon.Coupon {
	t.Helper()
	c, err := b.BuildDomain()
	require.NoError(t, err)
	return c
}

func oneLine(productID uuid.UUID) []coupon.LineRef {
	return []coupon.LineRef{{
		ProductID:     productID,
		CategoryID:    uuid.New(),
		SubCategoryID: uuid.New(),
		BrandID:       uuid.New(),
	}}
}

func TestNewCoupon(t *testing.T) {
	t.Run("valid percentage coupon", func(t *testing.T) {
		c := mustBuild(t, builder.NewCouponBuilder())
		assert.Equal(t, "SUMMER10", c.Code().String())
		assert.True(t, c.Discount().IsPercentage())
	})

	t.Run("code is case-normalized", func(t *testing.T) {
		c := mustBuild(t, builder.NewCouponBuilder().WithCode("  summer10 "))
		assert.Equal(t, "SUMMER10", c.Code().String())
	})

	t.Run("malformed code rejected", func(t *testing.T) {
		_, err := builder.NewCouponBuilder().WithCode("a!").BuildDomain()
		assert.ErrorIs(t, err, coupon.ErrInvalidCouponCode)
	})

	t.Run("negative fixed discount rejected", func(t *testing.T) {
		_, err := builder.NewCouponBuilder().WithFixedDiscount(-1).BuildDomain()
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountAmount)
	})

	t.Run("percentage above 100 rejected", func(t *testing.T) {
		_, err := builder.NewCouponBuilder().WithPercentDiscount(101, nil).BuildDomain()
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountPercent)
	})
}

func TestEvaluate(t *testing.T) {
	type testCase struct {
		name      string
		mutate    func(*builder.CouponBuilder)
		lines     []coupon.LineRef
		subtotal  int64
		priorUses int32
		at        time.Time
		want      int64
		errIs     error
	}

	productID := uuid.New()

	cases := []testCase{
		{
			name:     "universal 10 percent",
			subtotal: 5000,
			want:     500,
		},
		{
			name:     "inactive coupon",
			mutate:   func(b *builder.CouponBuilder) { b.Inactive() },
			subtotal: 5000,
			errIs:    coupon.ErrInactive,
		},
		{
			name:     "before window start",
			at:       time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
			subtotal: 5000,
			errIs:    coupon.ErrNotYetValid,
		},
		{
			name:     "after window end",
			at:       time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			subtotal: 5000,
			errIs:    coupon.ErrExpired,
		},
		{
			name:     "window start is inclusive",
			at:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			subtotal: 5000,
			want:     500,
		},
		{
			name:     "subtotal one cent below minimum rejected",
			mutate:   func(b *builder.CouponBuilder) { b.WithMinPurchase(10000) },
			subtotal: 9999,
			errIs:    coupon.ErrBelowMinPurchase,
		},
		{
			name:     "subtotal exactly at minimum accepted",
			mutate:   func(b *builder.CouponBuilder) { b.WithMinPurchase(10000) },
			subtotal: 10000,
			want:     1000,
		},
		{
			name:     "total usage cap reached",
			mutate:   func(b *builder.CouponBuilder) { b.WithUsage(50, 50, 0) },
			subtotal: 5000,
			errIs:    coupon.ErrUsageCapReached,
		},
		{
			name:     "total usage below cap accepted",
			mutate:   func(b *builder.CouponBuilder) { b.WithUsage(49, 50, 0) },
			subtotal: 5000,
			want:     500,
		},
		{
			name:      "per-user cap reached",
			mutate:    func(b *builder.CouponBuilder) { b.WithUsage(0, 0, 2) },
			subtotal:  5000,
			priorUses: 2,
			errIs:     coupon.ErrUserCapReached,
		},
		{
			name:      "per-user below cap accepted",
			mutate:    func(b *builder.CouponBuilder) { b.WithUsage(0, 0, 2) },
			subtotal:  5000,
			priorUses: 1,
			want:      500,
		},
		{
			name:     "percentage clamped to cap",
			mutate:   func(b *builder.CouponBuilder) { max := int64(1500); b.WithPercentDiscount(10, &max) },
			subtotal: 20000,
			want:     1500, // 10% of 20000 is 2000, cap wins
		},
		{
			name:     "percentage below cap untouched",
			mutate:   func(b *builder.CouponBuilder) { max := int64(1500); b.WithPercentDiscount(10, &max) },
			subtotal: 10000,
			want:     1000,
		},
		{
			name:     "fixed discount clamped to subtotal",
			mutate:   func(b *builder.CouponBuilder) { b.WithFixedDiscount(9000) },
			subtotal: 5000,
			want:     5000,
		},
		{
			name:     "product allow-list matches",
			mutate:   func(b *builder.CouponBuilder) { b.WithProducts(productID) },
			lines:    oneLine(productID),
			subtotal: 5000,
			want:     500,
		},
		{
			name:     "product allow-list does not match",
			mutate:   func(b *builder.CouponBuilder) { b.WithProducts(uuid.New()) },
			lines:    oneLine(productID),
			subtotal: 5000,
			errIs:    coupon.ErrNotApplicable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewCouponBuilder()
			if tc.mutate != nil {
				tc.mutate(b)
			}
			c := mustBuild(t, b)

			lines := tc.lines
			if lines == nil {
				lines = oneLine(uuid.New())
			}
			at := tc.at
			if at.IsZero() {
				at = evalTime
			}

			got, err := c.Evaluate(lines, tc.subtotal, tc.priorUses, at)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplicabilityPrecedence(t *testing.T) {
	categoryID := uuid.New()

	line := coupon.LineRef{
		ProductID:     uuid.New(),
		CategoryID:    categoryID,
		SubCategoryID: uuid.New(),
		BrandID:       uuid.New(),
	}

	t.Run("later set matches when earlier non-empty set misses", func(t *testing.T) {
		c := mustBuild(t, builder.NewCouponBuilder().
			WithProducts(uuid.New()).
			WithCategories(categoryID))

		got, err := c.Evaluate([]coupon.LineRef{line}, 5000, 0, evalTime)
		require.NoError(t, err)
		assert.Equal(t, int64(500), got)
	})

	t.Run("all non-empty sets miss", func(t *testing.T) {
		c := mustBuild(t, builder.NewCouponBuilder().
			WithProducts(uuid.New()).
			WithCategories(uuid.New()).
			WithSubCategories(uuid.New()).
			WithBrands(uuid.New()))

		_, err := c.Evaluate([]coupon.LineRef{line}, 5000, 0, evalTime)
		assert.ErrorIs(t, err, coupon.ErrNotApplicable)
	})

	t.Run("no sets means universally applicable", func(t *testing.T) {
		c := mustBuild(t, builder.NewCouponBuilder())
		got, err := c.Evaluate(nil, 5000, 0, evalTime)
		require.NoError(t, err)
		assert.Equal(t, int64(500), got)
	})
}
