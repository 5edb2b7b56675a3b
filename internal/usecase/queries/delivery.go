package queries

import (
	"context"

	"github.com/google/uuid"
)

// DeliveryZoneView is one serviceable zone with its flat charge.
type DeliveryZoneView struct {
	ID          uuid.UUID
	Name        string
	ChargeCents int64
	IsActive    bool
}

type DeliveryReadStore interface {
	ListZones(ctx context.Context) ([]DeliveryZoneView, error)
}

type DeliveryQueries interface {
	ListZones(ctx context.Context) ([]DeliveryZoneView, error)
}

type deliveryQueriesImpl struct {
	store DeliveryReadStore
}

func NewDeliveryQueries(store DeliveryReadStore) DeliveryQueries {
	return &deliveryQueriesImpl{store: store}
}

func (q *deliveryQueriesImpl) ListZones(ctx context.Context) ([]DeliveryZoneView, error) {
	return q.store.ListZones(ctx)
}
