package api

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	"github.com/Apurer/go-sheet-storefront/internal/clients/http/appscript"
	catalogjsonfeed "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/jsonfeed"
	catalogmemory "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/memory"
	catalogsheets "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/sheets"
	catalogports "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
	ordersappscript "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/appscript"
	ordersmemory "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/postgres"
	orderssheets "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/sheets"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
	localmemory "github.com/Apurer/go-sheet-storefront/internal/platform/localstore/memory"
	localpostgres "github.com/Apurer/go-sheet-storefront/internal/platform/localstore/postgres"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore/redisstore"
	platformobservability "github.com/Apurer/go-sheet-storefront/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-sheet-storefront/internal/platform/postgres"
	"github.com/Apurer/go-sheet-storefront/internal/platform/sheets"
)

// Backends holds the adapters selected by configuration plus their cleanup.
type Backends struct {
	DB          *gorm.DB
	Sheets      *sheets.Client
	Catalog     catalogports.Source
	LocalStore  localstore.Store
	OrderWriter ordersports.OrderWriter
	History     ordersports.HistorySource

	cleanups []func()
}

// Close releases connections in reverse order of acquisition.
func (b *Backends) Close() {
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		b.cleanups[i]()
	}
	b.cleanups = nil
}

// OpenBackends connects everything cfg selects. On error, anything already
// opened is closed.
func OpenBackends(ctx context.Context, cfg Config, logger *slog.Logger) (_ *Backends, err error) {
	b := &Backends{}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	if cfg.UsesPostgres() {
		db, cleanup, err := platformpostgres.Open(ctx, cfg.Postgres.DSN, platformpostgres.PoolConfig{
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}
		b.DB = db
		b.cleanups = append(b.cleanups, cleanup)
	}
	if cfg.Catalog.SpreadsheetID != "" {
		b.Sheets, err = sheets.NewClient(cfg.Catalog.SpreadsheetID, sheets.WithBaseURL(cfg.Catalog.SheetsBaseURL))
		if err != nil {
			return nil, err
		}
	}
	if b.Catalog, err = b.catalogSource(cfg); err != nil {
		return nil, err
	}
	if b.LocalStore, err = b.localStore(ctx, cfg); err != nil {
		return nil, err
	}
	if err = b.orderStore(cfg); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backends) catalogSource(cfg Config) (catalogports.Source, error) {
	switch cfg.Catalog.Backend {
	case BackendSheets:
		return catalogsheets.NewSource(b.Sheets, cfg.Catalog.ProductsSheet), nil
	case BackendJSONFeed:
		return catalogjsonfeed.NewSource(cfg.Catalog.FeedURL, nil)
	default:
		return catalogmemory.NewSource(), nil
	}
}

func (b *Backends) localStore(ctx context.Context, cfg Config) (localstore.Store, error) {
	switch cfg.LocalStore.Backend {
	case BackendRedis:
		rdb, err := redisstore.Connect(ctx, cfg.LocalStore.RedisURL)
		if err != nil {
			return nil, err
		}
		b.cleanups = append(b.cleanups, func() { _ = rdb.Close() })
		return redisstore.NewStore(rdb, cfg.LocalStore.Namespace), nil
	case BackendPostgres:
		return localpostgres.NewStore(b.DB, cfg.LocalStore.Namespace), nil
	default:
		return localmemory.NewStore(), nil
	}
}

func (b *Backends) orderStore(cfg Config) error {
	switch cfg.Orders.Backend {
	case BackendAppScript:
		scriptClient, err := appscript.NewClient(cfg.Orders.AppScriptURL, nil)
		if err != nil {
			return err
		}
		b.OrderWriter = ordersappscript.NewWriter(scriptClient)
		b.History = orderssheets.NewHistory(b.Sheets, cfg.Orders.OrdersSheet)
	case BackendPostgres:
		store := orderspostgres.NewStore(b.DB)
		b.OrderWriter, b.History = store, store
	default:
		store := ordersmemory.NewStore()
		b.OrderWriter, b.History = store, store
	}
	return nil
}

// DialTemporal connects a traced Temporal client.
func DialTemporal(cfg TemporalConfig, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.Disabled {
		return nil, fmt.Errorf("temporal disabled via TEMPORAL_DISABLED")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
