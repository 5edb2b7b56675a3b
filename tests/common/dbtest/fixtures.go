//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestProduct(t *testing.T, db DBLike, name string, priceCents int64, stock int32) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO products (id, name, sku_code, price_cents, discount_cents, stock, total_sales, is_best_selling)
		VALUES ($1, $2, $3, $4, 0, $5, 0, false)`,
		productID, name, "SKU-"+productID.String()[:8], priceCents, stock)
	require.NoError(t, err)

	return productID
}

func CreateGuestCart(t *testing.T, db DBLike, guestID string, productID uuid.UUID, quantity int32) uuid.UUID {
	t.Helper()

	cartID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		`INSERT INTO carts (id, guest_id) VALUES ($1, $2)`, cartID, guestID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), cartID, productID, quantity)
	require.NoError(t, err)

	return cartID
}

func CreateTestCoupon(t *testing.T, db DBLike, code string, percentOff float64, maxOffCents int64) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO coupons (id, code, percent_off, max_off_cents, min_purchase_cents,
		                     start_at, end_at, is_active, usage_limit_total, usage_limit_per_user, total_used)
		VALUES ($1, $2, $3, $4, 0, now() - interval '1 day', now() + interval '30 days', true, 0, 0, 0)`,
		couponID, code, percentOff, maxOffCents)
	require.NoError(t, err)

	return couponID
}

func DeliveryZoneID(t *testing.T, db DBLike, name string) uuid.UUID {
	t.Helper()

	var zoneID uuid.UUID
	err := db.QueryRow(context.Background(),
		`SELECT id FROM delivery_zones WHERE name = $1`, name).Scan(&zoneID)
	require.NoError(t, err)

	return zoneID
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO delivery_zones (id, name, charge_cents, is_active) VALUES
		    (gen_random_uuid(), 'Inside Dhaka', 6000, true),
		    (gen_random_uuid(), 'Outside Dhaka', 12000, true)
		ON CONFLICT (name) DO NOTHING;
	`)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
