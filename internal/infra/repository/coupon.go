package repository

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
)

// CouponRepository commits coupon redemptions. The caps are re-checked in
// the same statement that increments the counter, so the evaluator's
// point-in-time read can never oversell a capped coupon.
type CouponRepository struct {
	db db.DBTX
}

var _ commands.CouponRedeemer = (*CouponRepository)(nil)

func NewCouponRepository(dbtx db.DBTX) *CouponRepository {
	return &CouponRepository{db: dbtx}
}

const redeemCouponSQL = `
WITH bumped AS (
	UPDATE coupons
	SET total_used = total_used + 1
	WHERE id = $1
	  AND ($2 = 0 OR total_used < $2)
	  AND ($3 = 0 OR (
		SELECT COUNT(*) FROM coupon_redemptions r
		WHERE r.coupon_id = $1
		  AND r.user_id IS NOT DISTINCT FROM $4
		  AND r.guest_id IS NOT DISTINCT FROM $5
	  ) < $3)
	RETURNING id
)
INSERT INTO coupon_redemptions (id, coupon_id, user_id, guest_id, created_at)
SELECT $6, id, $4, $5, now() FROM bumped`

func (r *CouponRepository) Redeem(ctx context.Context, couponID uuid.UUID, owner order.Owner, usageLimitTotal, usageLimitPerUser int32) (bool, error) {
	tag, err := r.db.Exec(ctx, redeemCouponSQL,
		couponID, usageLimitTotal, usageLimitPerUser,
		owner.UserID(), owner.GuestID(), uuid.New())
	if err != nil {
		return false, infra.WrapRepoErr("failed to redeem coupon", err)
	}
	return tag.RowsAffected() == 1, nil
}

const releaseCouponSQL = `
WITH released AS (
	DELETE FROM coupon_redemptions
	WHERE id IN (
		SELECT id FROM coupon_redemptions
		WHERE coupon_id = $1
		  AND user_id IS NOT DISTINCT FROM $2
		  AND guest_id IS NOT DISTINCT FROM $3
		ORDER BY created_at DESC
		LIMIT 1
	)
	RETURNING coupon_id
)
UPDATE coupons
SET total_used = total_used - 1
WHERE id IN (SELECT coupon_id FROM released)`

// Release undoes the requester's most recent redemption; a release without a
// matching redemption is a no-op.
func (r *CouponRepository) Release(ctx context.Context, couponID uuid.UUID, owner order.Owner) error {
	_, err := r.db.Exec(ctx, releaseCouponSQL, couponID, owner.UserID(), owner.GuestID())
	if err != nil {
		return infra.WrapRepoErr("failed to release coupon redemption", err)
	}
	return nil
}
