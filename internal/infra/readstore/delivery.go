package readstore

import (
	"context"

	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/pkg/cache"
	"commerce-core/internal/pkg/pgconv"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
)

const zoneListCacheKey = "delivery-zones"

// DeliveryReadStore serves delivery zone lookups through shared caches;
// zones change rarely and every checkout reads one.
type DeliveryReadStore struct {
	db      db.DBTX
	charges *cache.Cache[uuid.UUID, int64]
	zones   *cache.Cache[string, []queries.DeliveryZoneView]
}

func NewDeliveryReadStore(
	dbtx db.DBTX,
	charges *cache.Cache[uuid.UUID, int64],
	zones *cache.Cache[string, []queries.DeliveryZoneView],
) *DeliveryReadStore {
	return &DeliveryReadStore{db: dbtx, charges: charges, zones: zones}
}

func (s *DeliveryReadStore) ChargeByZone(ctx context.Context, zoneID uuid.UUID) (int64, error) {
	if charge, ok := s.charges.Get(zoneID); ok {
		return charge, nil
	}

	var charge int64
	err := s.db.QueryRow(ctx,
		`SELECT charge_cents FROM delivery_zones WHERE id = $1 AND is_active`, zoneID).Scan(&charge)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.WrapRepoErr("delivery zone not found", err, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to load delivery charge", err)
	}

	s.charges.Set(zoneID, charge)
	return charge, nil
}

func (s *DeliveryReadStore) ListZones(ctx context.Context) ([]queries.DeliveryZoneView, error) {
	if zones, ok := s.zones.Get(zoneListCacheKey); ok {
		return zones, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, name, charge_cents, is_active FROM delivery_zones WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list delivery zones", err)
	}
	defer rows.Close()

	var zones []queries.DeliveryZoneView
	for rows.Next() {
		var z queries.DeliveryZoneView
		if err := rows.Scan(&z.ID, &z.Name, &z.ChargeCents, &z.IsActive); err != nil {
			return nil, infra.WrapRepoErr("failed to scan delivery zone", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read delivery zones", err)
	}

	s.zones.Set(zoneListCacheKey, zones)
	return zones, nil
}
