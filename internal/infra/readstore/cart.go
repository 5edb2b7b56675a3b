package readstore

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/usecase/shared"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(dbtx db.DBTX) *CartReadStore {
	return &CartReadStore{db: dbtx}
}

const cartByOwnerSQL = `
SELECT c.id,
       ci.product_id, ci.variant_id,
       p.category_id, p.sub_category_id, p.brand_id,
       p.name,
       COALESCE(v.sku_code, p.sku_code),
       COALESCE(v.size, ''), COALESCE(v.color, ''),
       ci.quantity,
       COALESCE(v.price_cents, p.price_cents),
       p.discount_cents
FROM carts c
JOIN cart_items ci ON ci.cart_id = c.id
JOIN products p ON p.id = ci.product_id
LEFT JOIN product_variants v ON v.id = ci.variant_id
WHERE c.user_id IS NOT DISTINCT FROM $1
  AND c.guest_id IS NOT DISTINCT FROM $2
ORDER BY ci.created_at`

// FindByOwner loads the cart with live catalog prices; the assembler freezes
// them into order line snapshots.
func (s *CartReadStore) FindByOwner(ctx context.Context, owner order.Owner) (*shared.CartSnapshot, error) {
	rows, err := s.db.Query(ctx, cartByOwnerSQL, owner.UserID(), owner.GuestID())
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart", err)
	}
	defer rows.Close()

	snap := &shared.CartSnapshot{}
	for rows.Next() {
		var line shared.CartLine
		if err := rows.Scan(
			&snap.ID,
			&line.ProductID, &line.VariantID,
			&line.CategoryID, &line.SubCategoryID, &line.BrandID,
			&line.ProductName,
			&line.SKUCode, &line.Size, &line.Color,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.DiscountCents,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		line.SubtotalCents = (line.UnitPriceCents - line.DiscountCents) * int64(line.Quantity)
		snap.Lines = append(snap.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}
	if len(snap.Lines) == 0 {
		return nil, infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
	}
	return snap, nil
}
