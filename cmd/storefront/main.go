package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/checkout"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/db"
	handlerhttp "github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/storage"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}

	catalogClient := catalog.NewClient(cfg.Backend.BaseURL, httpClient)
	validator := coupon.NewValidator(cfg.Backend.BaseURL, httpClient)
	submitter := order.NewSubmitter(cfg.Backend.BaseURL, httpClient)
	tracker := order.NewTracker(cfg.Backend.BaseURL, httpClient)

	persist, cleanup, err := newPersistence(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cart persistence")
	}
	defer cleanup()

	// The tax rate is an external configuration value; without it the
	// storefront still serves, pricing just carries no tax.
	taxRate := decimal.Zero
	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if publicCfg, err := catalogClient.PublicConfig(bootCtx); err != nil {
		log.Warn().Err(err).Msg("Public config unavailable, tax rate defaults to 0")
	} else {
		taxRate = decimal.NewFromFloat(publicCfg.TaxRate)
	}
	cancel()

	sessions := checkout.NewManager(persist, validator, taxRate)
	defer sessions.Close()

	h := handlerhttp.NewStorefrontHandler(catalogClient, sessions, submitter, tracker)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      transport.NewRouter(h),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func newPersistence(cfg *config.Config) (cart.Persistence, func(), error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		dbConn, err := db.Connect(db.Config{
			Host:           cfg.Postgres.Host,
			Port:           cfg.Postgres.Port,
			User:           cfg.Postgres.User,
			Password:       cfg.Postgres.Password,
			DBName:         cfg.Postgres.DBName,
			SSLMode:        cfg.Postgres.SSLMode,
			MigrationsPath: cfg.Postgres.MigrationsPath,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresPersistence(dbConn), func() { dbConn.Close() }, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return storage.NewRedisPersistence(client), func() { client.Close() }, nil
	default:
		return cart.NewMemoryPersistence(), func() {}, nil
	}
}
