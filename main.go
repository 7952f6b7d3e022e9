package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_essentials/config"
	"campus_essentials/handlers"
	"campus_essentials/internal/payment"
	"campus_essentials/internal/repository"
	"campus_essentials/internal/service"
	"campus_essentials/internal/ws"
	"campus_essentials/pkg/logger"
	"campus_essentials/pkg/mq"
	"campus_essentials/pkg/obs"
	"campus_essentials/routes"
	"campus_essentials/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	lg := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(lg)

	if err := run(cfg, lg); err != nil {
		lg.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := obs.InitTracer("campus-essentials", cfg.OTLPEndpoint, cfg.Env)
		if err != nil {
			lg.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()
		}
	}

	db, err := config.OpenDatabase(cfg.DatabaseURL, cfg.Env == "development" && cfg.LogLevel == "debug")
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if cfg.ResetDB {
		err = config.ResetAndMigrate(db, lg)
	} else {
		err = config.Migrate(db, lg)
	}
	if err != nil {
		return err
	}
	if cfg.SeedDB {
		if err := config.SeedDemoData(ctx, db, cfg.DefaultCampus, lg); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}

	hub := ws.NewHub(lg.With("component", "hub"))
	if cfg.RedisURL != "" {
		rdb, err := ws.NewRedisClient(cfg.RedisURL)
		if err != nil {
			lg.Warn("redis unavailable, realtime stays local to this instance", "error", err)
		} else {
			defer rdb.Close()
			relay := ws.NewRedisRelay(rdb, lg.With("component", "relay"))
			hub.UseRelay(relay)
			hub.UsePresence(ws.NewRedisPresence(rdb))
			go func() {
				if err := relay.Run(ctx, hub.Deliver); err != nil {
					lg.Error("realtime relay stopped", "error", err)
				}
			}()
		}
	}

	// A nil *mq.Publisher must not reach the services as a non-nil interface.
	var events service.EventPublisher
	if cfg.RabbitMQURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitMQURL, cfg.MQExchange)
		if err != nil {
			lg.Warn("rabbitmq unavailable, domain events disabled", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}
	}

	var gateway service.PaymentGateway = payment.Unconfigured{}
	if cfg.PaymentsEnabled() {
		omise, err := payment.NewOmiseProvider(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.PaymentTimeout)
		if err != nil {
			return err
		}
		gateway = omise
	}

	users := repository.NewUserRepository(db)
	listings := repository.NewListingRepository(db)
	convs := repository.NewConversationRepository(db)
	msgs := repository.NewMessageRepository(db)
	orders := repository.NewOrderRepository(db)

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration)

	app := routes.NewApp(cfg, lg, routes.Deps{
		Tokens:        tokens,
		Hub:           hub,
		Images:        handlers.NewImageStore(cfg.UploadDir),
		Auth:          service.NewAuthService(users, tokens, lg),
		Catalog:       service.NewCatalogService(listings, events, cfg.DefaultCampus, lg),
		Conversations: service.NewConversationService(convs, users, listings, hub, lg),
		Messages:      service.NewMessageService(convs, msgs, hub, lg),
		Payments:      service.NewPaymentService(orders, listings, gateway, events, cfg.Currency, lg),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.HOST + ":" + cfg.AppPort
		lg.Info("server starting", "addr", addr, "env", cfg.Env)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
