package repository

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(dbtx db.DBTX) *CartRepository {
	return &CartRepository{db: dbtx}
}

func (r *CartRepository) DeleteByOwner(ctx context.Context, dbtx db.DBTX, owner order.Owner) error {
	_, err := dbtx.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id IN (
			SELECT id FROM carts
			WHERE user_id IS NOT DISTINCT FROM $1 AND guest_id IS NOT DISTINCT FROM $2
		)`, owner.UserID(), owner.GuestID())
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart items", err)
	}

	_, err = dbtx.Exec(ctx, `
		DELETE FROM carts
		WHERE user_id IS NOT DISTINCT FROM $1 AND guest_id IS NOT DISTINCT FROM $2`,
		owner.UserID(), owner.GuestID())
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart", err)
	}
	return nil
}
