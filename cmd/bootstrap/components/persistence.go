package components

import (
	"commerce-core/internal/infra/db"
	"commerce-core/internal/infra/gateway"
	"commerce-core/internal/infra/readstore"
	"commerce-core/internal/infra/repository"
	"commerce-core/internal/infra/uow"
	"commerce-core/internal/pkg/cache"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		NewDeliveryChargeCache,
		NewZoneListCache,
		readstore.NewDeliveryReadStore,
		func(s *readstore.DeliveryReadStore) queries.DeliveryReadStore { return s },
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		// Stock and coupon counters commit outside the order transaction,
		// so these two run on the pool connection directly.
		fx.Annotate(
			repository.NewInventoryRepository,
			fx.As(new(commands.InventoryLedger)),
		),
		fx.Annotate(
			repository.NewCouponRepository,
			fx.As(new(commands.CouponRedeemer)),
		),
		uow.NewPostgresUoW,
		fx.Annotate(
			gateway.NewClient,
			fx.As(new(commands.PaymentGateway)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewDeliveryChargeCache(cfg config.CheckoutConfig, clk clock.Clock) *cache.Cache[uuid.UUID, int64] {
	return cache.New[uuid.UUID, int64](cfg.DeliveryCacheTTL, cfg.DeliveryCacheMax, clk)
}

func NewZoneListCache(cfg config.CheckoutConfig, clk clock.Clock) *cache.Cache[string, []queries.DeliveryZoneView] {
	return cache.New[string, []queries.DeliveryZoneView](cfg.DeliveryCacheTTL, cfg.DeliveryCacheMax, clk)
}
