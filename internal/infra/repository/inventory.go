package repository

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/usecase/commands"

	"github.com/jackc/pgx/v5/pgconn"
)

// InventoryRepository implements the inventory ledger with single-statement
// conditional writes: the stock check and the decrement happen in the same
// UPDATE, so concurrent checkouts cannot both take the last unit.
type InventoryRepository struct {
	db db.DBTX
}

var _ commands.InventoryLedger = (*InventoryRepository)(nil)

func NewInventoryRepository(dbtx db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: dbtx}
}

const reserveProductSQL = `
UPDATE products
SET stock = stock - $2,
    total_sales = total_sales + $2,
    is_best_selling = (total_sales + $2) >= $3
WHERE id = $1 AND stock >= $2`

const reserveVariantSQL = `
WITH v AS (
	UPDATE product_variants
	SET stock = stock - $3,
	    total_sales = total_sales + $3
	WHERE id = $2 AND product_id = $1 AND stock >= $3
	RETURNING product_id
)
UPDATE products p
SET total_sales = p.total_sales + $3,
    is_best_selling = (p.total_sales + $3) >= $4
FROM v
WHERE p.id = v.product_id`

func (r *InventoryRepository) Reserve(ctx context.Context, sku order.SKU, quantity int32) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if sku.VariantID != nil {
		tag, err = r.db.Exec(ctx, reserveVariantSQL, sku.ProductID, *sku.VariantID, quantity, order.BestSellingThreshold)
	} else {
		tag, err = r.db.Exec(ctx, reserveProductSQL, sku.ProductID, quantity, order.BestSellingThreshold)
	}
	if err != nil {
		return infra.WrapRepoErr("failed to reserve stock", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// zero rows is either a missing SKU or a stock shortfall
	exists, err := r.skuExists(ctx, sku)
	if err != nil {
		return err
	}
	if !exists {
		return infra.WrapRepoErr("sku not found", nil, infra.KindNotFound)
	}
	return infra.WrapRepoErr("insufficient stock", nil, infra.KindConflict)
}

const restockProductSQL = `
UPDATE products
SET stock = stock + $2,
    total_sales = total_sales - $2,
    is_best_selling = (total_sales - $2) >= $3
WHERE id = $1`

const restockVariantSQL = `
WITH v AS (
	UPDATE product_variants
	SET stock = stock + $3,
	    total_sales = total_sales - $3
	WHERE id = $2 AND product_id = $1
	RETURNING product_id
)
UPDATE products p
SET total_sales = p.total_sales - $3,
    is_best_selling = (p.total_sales - $3) >= $4
FROM v
WHERE p.id = v.product_id`

func (r *InventoryRepository) Restock(ctx context.Context, sku order.SKU, quantity int32) error {
	var err error
	if sku.VariantID != nil {
		_, err = r.db.Exec(ctx, restockVariantSQL, sku.ProductID, *sku.VariantID, quantity, order.BestSellingThreshold)
	} else {
		_, err = r.db.Exec(ctx, restockProductSQL, sku.ProductID, quantity, order.BestSellingThreshold)
	}
	if err != nil {
		return infra.WrapRepoErr("failed to restock", err)
	}
	return nil
}

func (r *InventoryRepository) skuExists(ctx context.Context, sku order.SKU) (bool, error) {
	var (
		exists bool
		err    error
	)
	if sku.VariantID != nil {
		err = r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM product_variants WHERE id = $1 AND product_id = $2)`,
			*sku.VariantID, sku.ProductID).Scan(&exists)
	} else {
		err = r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, sku.ProductID).Scan(&exists)
	}
	if err != nil {
		return false, infra.WrapRepoErr("failed to check sku existence", err)
	}
	return exists, nil
}
