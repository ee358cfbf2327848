package components

import (
	repo_impl "shuttlecourt/internal/infra/repository"

	"shuttlecourt/internal/infra/mq"
	"shuttlecourt/internal/infra/payment"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/infra/rediscache"
	"shuttlecourt/internal/pkg/config"
	"shuttlecourt/internal/usecase/commands"
	"shuttlecourt/internal/usecase/queries"
	"shuttlecourt/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	repositoryModule,
	readstoreModule,
	gatewayModule,
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		fx.Annotate(
			postgres.NewTxManager,
			fx.As(new(shared.TxManager)),
		),
		repo_impl.NewCourtRepository,
		NewCourtCache,
		// Raw court reads go straight to Postgres; checkout settlement needs
		// the rules as currently stored, not a cached snapshot.
		fx.Annotate(
			func(r *repo_impl.CourtRepository) commands.CourtRepository { return r },
			fx.ResultTags(`name:"rawCourts"`),
		),
		fx.Annotate(
			func(c *rediscache.CourtCache) commands.CourtRepository { return c },
			fx.ResultTags(`name:"cachedCourts"`),
		),
		func(c *rediscache.CourtCache) commands.CourtCacheInvalidator { return c },
		fx.Annotate(
			repo_impl.NewCourtAdminRepository,
			fx.As(new(commands.CourtAdminRepository)),
		),
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
		),
		fx.Annotate(
			repo_impl.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
		),
		fx.Annotate(
			repo_impl.NewVoucherRepository,
			fx.As(new(commands.VoucherRepository)),
		),
		fx.Annotate(
			repo_impl.NewCatalogRepository,
			fx.As(new(commands.ProductCatalog)),
		),
		fx.Annotate(
			repo_impl.NewStockRepository,
			fx.As(new(commands.StockReserver)),
		),
		fx.Annotate(
			repo_impl.NewUserRepository,
			fx.As(new(commands.UserRepository)),
		),
		fx.Annotate(
			repo_impl.NewCustomerDirectory,
			fx.As(new(commands.CustomerDirectory)),
		),
	),
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewBookingReadStore,
			fx.As(new(queries.BookingQueries)),
		),
		fx.Annotate(
			repo_impl.NewOrderReadStore,
			fx.As(new(queries.OrderQueries)),
		),
	),
)

var gatewayModule = fx.Module("persistence/gateway",
	fx.Provide(
		fx.Annotate(
			NewPaymentClient,
			fx.As(new(commands.PaymentGateway)),
		),
		func(p *mq.Publisher) commands.Notifier { return p },
	),
)

func NewCourtCache(client *redis.Client, source *repo_impl.CourtRepository, cfg config.Config) *rediscache.CourtCache {
	return rediscache.NewCourtCache(client, source, cfg.Redis)
}

func NewPaymentClient(cfg config.Config) *payment.Client {
	return payment.NewClient(cfg.Payment)
}
