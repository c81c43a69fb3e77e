package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	storefrontserver "github.com/Apurer/go-sheet-storefront/go"

	"github.com/Apurer/go-sheet-storefront/internal/app/storefront"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/adapters/razorpay"
	checkoutdomain "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/adapters/whatsapp"
	notificationsapp "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/application"
	notificationsports "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/ports"
	ordersworkflows "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-sheet-storefront/internal/platform/observability"
)

const serviceName = "storefront-api"

// Run boots the storefront HTTP API and blocks until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open backends: %w", err)
	}
	defer backends.Close()

	var writer ordersports.OrderWriter = ordersworkflows.NewInlineWriter(backends.OrderWriter)
	if temporalClient, err := DialTemporal(cfg.Temporal, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, writing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		writer = ordersworkflows.NewTemporalWriter(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.Temporal.Namespace))
	}

	session, err := storefront.NewSession(ctx, storefront.Dependencies{
		CatalogSource:  backends.Catalog,
		LocalStore:     backends.LocalStore,
		OrderWriter:    writer,
		OrderHistory:   backends.History,
		Composer:       notificationsapp.NewComposer(cfg.Notifications.MessagingBaseURL, cfg.Notifications.BusinessNumber),
		Payments:       razorpay.New(cfg.Payments.RazorpayKey, razorpay.WithThemeColor(cfg.Payments.ThemeColor)),
		Dispatcher:     buildDispatcher(cfg.Notifications, logger),
		StoreName:      cfg.StoreName,
		Merchant:       merchant(cfg.Payments),
		FetchTimeout:   cfg.Catalog.FetchTimeout,
		SubmitTimeout:  cfg.Orders.SubmitTimeout,
		HistoryTimeout: cfg.Orders.HistoryTimeout,
		Instruments:    instruments,
	})
	if err != nil {
		return fmt.Errorf("failed to build session: %w", err)
	}
	if report, err := session.Catalog.Load(ctx); err != nil {
		logger.Warn("initial catalog load failed, serving an empty catalog", slog.String("error", err.Error()))
	} else {
		logger.Info("catalog loaded", slog.Int("products", report.Accepted), slog.Int("issues", len(report.Issues)))
	}

	router := storefrontserver.NewRouter(session.Handlers(), otelgin.Middleware(serviceName))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("storefront API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down storefront API")
	return server.Shutdown(shutdownCtx)
}

func merchant(cfg PaymentsConfig) checkoutdomain.Merchant {
	m := checkoutdomain.DefaultMerchant()
	if cfg.MerchantName != "" {
		m.Name = cfg.MerchantName
	}
	if cfg.MerchantDescription != "" {
		m.Description = cfg.MerchantDescription
	}
	if cfg.Currency != "" {
		m.Currency = cfg.Currency
	}
	return m
}

// buildDispatcher returns the WhatsApp gateway client when one is configured.
// It is only used by the explicit dispatch endpoint.
func buildDispatcher(cfg NotificationsConfig, logger *slog.Logger) notificationsports.Dispatcher {
	if cfg.WhatsApp.BaseURL == "" {
		return notificationsapp.NoopDispatcher{}
	}
	client, err := whatsapp.NewClient(whatsapp.Config{
		BaseURL:   cfg.WhatsApp.BaseURL,
		Path:      cfg.WhatsApp.Path,
		Username:  cfg.WhatsApp.Username,
		Password:  cfg.WhatsApp.Password,
		Recipient: cfg.BusinessNumber,
	}, nil)
	if err != nil {
		logger.Warn("WhatsApp dispatcher disabled", slog.String("error", err.Error()))
		return notificationsapp.NoopDispatcher{}
	}
	return client
}
