package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/atelier-bot/internal/adapter/icon"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/artwork"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/order"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/paper"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/user"
	"github.com/heartmarshall/atelier-bot/internal/adapter/session"
	"github.com/heartmarshall/atelier-bot/internal/adapter/telegram"
	"github.com/heartmarshall/atelier-bot/internal/bot"
	"github.com/heartmarshall/atelier-bot/internal/config"
	"github.com/heartmarshall/atelier-bot/internal/service/account"
	ordersvc "github.com/heartmarshall/atelier-bot/internal/service/order"
	"github.com/heartmarshall/atelier-bot/internal/service/provision"
	"github.com/heartmarshall/atelier-bot/internal/service/resolver"
	"github.com/heartmarshall/atelier-bot/internal/transport/middleware"
	"github.com/heartmarshall/atelier-bot/internal/transport/rest"
	intake "github.com/heartmarshall/atelier-bot/internal/transport/telegram"
)

// rateLimiterCleanup is how often idle per-user buckets are dropped.
const rateLimiterCleanup = time.Minute

// Run connects to the database, wires the bot and serves until ctx is
// cancelled or one of the long-running components fails.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting atelier bot",
		slog.String("version", BuildVersion()),
		slog.String("mode", cfg.Bot.Mode),
		slog.Int64("atelier_id", cfg.Bot.AtelierID),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Inventory store.
	users := user.New(pool)
	papers := paper.New(pool)
	artworks := artwork.New(pool)
	orders := order.New(pool)
	tx := postgres.NewTxManager(pool)

	// Adapters.
	sessions := session.NewStore(session.WithTTL(cfg.Session.TTL))
	client := telegram.NewClient(cfg.Bot, logger)
	notifier := telegram.NewNotifier(client, cfg.Bot.AtelierID, logger)
	icons := icon.NewMaker(cfg.Icon, logger)

	// Services.
	accountSvc := account.NewService(logger, users, artworks, papers, cfg.Bot.AtelierID)
	resolverSvc := resolver.NewService(logger, users)
	orderSvc := ordersvc.NewService(logger, sessions, artworks, papers, orders, notifier, tx)
	provisionSvc := provision.NewService(logger, sessions, resolverSvc, users, artworks, papers, icons, tx, cfg.Bot.AtelierID)

	router := bot.NewRouter(logger, sessions, accountSvc, orderSvc, provisionSvc)

	limiter := middleware.NewRateLimiter(cfg.Bot.RatePerMinute, rateLimiterCleanup)
	defer limiter.Stop()

	handler := intake.NewHandler(logger, client, router, limiter, cfg.Icon.MaxUploadBytes)

	// HTTP: probes, plus the webhook in webhook mode.
	mux := http.NewServeMux()
	rest.NewHealthHandler(pool, sessions, cfg.Bot.Mode, BuildVersion()).Register(mux)
	if cfg.Bot.IsWebhook() {
		mux.Handle(intake.WebhookPath, intake.NewWebhook(logger, handler, cfg.Bot.WebhookSecret))
	}

	srv := &http.Server{
		Addr: net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: middleware.Chain(
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.Logger(logger),
		)(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if !cfg.Bot.IsWebhook() {
		poller := intake.NewPoller(logger, client, handler)
		g.Go(func() error { return poller.Run(gctx) })
	}

	if cfg.Session.TTL > 0 {
		sweeper := session.NewSweeper(sessions, cfg.Session.SweepInterval, logger)
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	err = g.Wait()
	logger.Info("atelier bot stopped")
	return err
}

// Migrate applies pending migrations and returns.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return postgres.Migrate(ctx, pool, logger)
}
