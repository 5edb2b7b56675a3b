package readstore

import (
	"context"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/pkg/pgconv"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type CouponReadStore struct {
	db db.DBTX
}

func NewCouponReadStore(dbtx db.DBTX) *CouponReadStore {
	return &CouponReadStore{db: dbtx}
}

const couponByCodeSQL = `
SELECT c.id, c.code, c.amount_off_cents, c.percent_off, c.max_off_cents,
       c.min_purchase_cents, c.start_at, c.end_at, c.is_active,
       c.usage_limit_total, c.usage_limit_per_user, c.total_used,
       COALESCE((SELECT array_agg(product_id) FROM coupon_products WHERE coupon_id = c.id), '{}'),
       COALESCE((SELECT array_agg(category_id) FROM coupon_categories WHERE coupon_id = c.id), '{}'),
       COALESCE((SELECT array_agg(sub_category_id) FROM coupon_sub_categories WHERE coupon_id = c.id), '{}'),
       COALESCE((SELECT array_agg(brand_id) FROM coupon_brands WHERE coupon_id = c.id), '{}')
FROM coupons c
WHERE c.code = $1`

// FindByCode normalizes the code the way the evaluator does; a code that
// cannot normalize is reported as not found rather than a validation error.
func (s *CouponReadStore) FindByCode(ctx context.Context, rawCode string) (*shared.CouponSnapshot, error) {
	code, err := coupon.NewCode(rawCode)
	if err != nil {
		return nil, infra.WrapRepoErr("coupon code not recognized", err, infra.KindNotFound)
	}

	var snap shared.CouponSnapshot
	err = s.db.QueryRow(ctx, couponByCodeSQL, code.String()).Scan(
		&snap.ID, &snap.Code, &snap.AmountOffCents, &snap.PercentOff, &snap.MaxOffCents,
		&snap.MinPurchaseCents, &snap.StartAt, &snap.EndAt, &snap.IsActive,
		&snap.UsageLimitTotal, &snap.UsageLimitPerUser, &snap.TotalUsed,
		&snap.Products, &snap.Categories, &snap.SubCategories, &snap.Brands,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load coupon", err)
	}
	return &snap, nil
}

func (s *CouponReadStore) CountUses(ctx context.Context, couponID uuid.UUID, owner order.Owner) (int32, error) {
	var count int32
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM coupon_redemptions
		WHERE coupon_id = $1
		  AND user_id IS NOT DISTINCT FROM $2
		  AND guest_id IS NOT DISTINCT FROM $3`,
		couponID, owner.UserID(), owner.GuestID()).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count coupon uses", err)
	}
	return count, nil
}
