package main

import (
	"fmt"
	"log/slog"
	"os"

	log "github.com/charmbracelet/log"

	"github.com/marketpay/stripe-mirakl-connector/infra"
	"github.com/marketpay/stripe-mirakl-connector/infra/provider/miraklapi"
	"github.com/marketpay/stripe-mirakl-connector/infra/provider/stripepayment"
	mappingrepo "github.com/marketpay/stripe-mirakl-connector/infra/repository/accountmapping"
	transferrepo "github.com/marketpay/stripe-mirakl-connector/infra/repository/transfer"
	"github.com/marketpay/stripe-mirakl-connector/pkg/config"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain/events"
	"github.com/marketpay/stripe-mirakl-connector/pkg/eventbus"
	"github.com/marketpay/stripe-mirakl-connector/pkg/service/selleronboarding"
	"github.com/marketpay/stripe-mirakl-connector/pkg/service/transferprocessor"
	"github.com/marketpay/stripe-mirakl-connector/webapi"
	onboardingapi "github.com/marketpay/stripe-mirakl-connector/webapi/onboarding"
	transferapi "github.com/marketpay/stripe-mirakl-connector/webapi/transfer"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	transfers := transferrepo.New(db)
	mappings := mappingrepo.New(db)

	stripeProvider := stripepayment.New(cfg.Stripe, logger)
	miraklClient := miraklapi.New(cfg.Mirakl, logger)

	onboardingSvc, err := selleronboarding.New(
		mappings,
		miraklClient,
		stripeProvider,
		cfg.Stripe,
		cfg.Mirakl,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build onboarding service: %w", err)
	}

	processor := transferprocessor.New(transfers, miraklClient, stripeProvider, logger)

	bus := eventbus.NewSimpleEventBus(logger)
	bus.Subscribe(events.EventTypeProcessTransfer, processor.HandleProcessTransfer())

	app := webapi.NewApp()
	onboardingapi.NewHandlers(onboardingSvc, miraklClient, logger).MapRoutes(app)
	transferapi.NewHandlers(bus, logger).MapRoutes(app)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
	)
	return app.Listen(addr)
}

func newLogger(cfg *config.Log) *slog.Logger {
	level := slog.Level(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
