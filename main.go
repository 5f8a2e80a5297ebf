package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phonestore/cache"
	"phonestore/controllers"
	"phonestore/events"
	"phonestore/repository"
	"phonestore/routes"
	"phonestore/services"
	"phonestore/utils"
)

const eventQueueSize = 256

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Database ---
	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	var phones repository.PhoneRepository = repository.NewPhoneRepository(db)
	users := repository.NewUserRepository(db)
	orders := repository.NewOrderRepository(db)
	carts := repository.NewCartRepository(db)

	// --- Cache ---
	if cfg.RedisURL != "" {
		rdb, err := cache.ConnectRedis(ctx, cache.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		phones = cache.NewCachedPhoneRepository(phones, rdb, cfg.CacheTTL)
		slog.Info("phone cache enabled", "ttl", cfg.CacheTTL)
	}

	// --- Events ---
	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewBackground(events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic), eventQueueSize, 5*time.Second)
		slog.Info("order events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaOrderTopic)
	}
	defer publisher.Close()

	// --- Email and identity ---
	emailService, err := utils.NewEmailService(cfg)
	if err != nil {
		return err
	}
	var google *utils.GoogleProvider
	if cfg.GoogleClientID != "" {
		google = utils.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	// --- Services and HTTP API ---
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	catalog := services.NewCatalogService(phones)
	orderService := services.NewOrderService(orders, phones, users, publisher, emailService)
	cartService := services.NewCartService(carts, phones, orderService)

	handler := routes.NewRouter(routes.Controllers{
		Auth:   controllers.NewAuthController(services.NewAuthService(users, tokens), tokens, google, cfg.ClientURL),
		Users:  controllers.NewUserController(services.NewUserService(users, carts)),
		Phones: controllers.NewPhoneController(catalog),
		Carts:  controllers.NewCartController(cartService),
		Orders: controllers.NewOrderController(orderService),
	}, tokens)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
	defer done()
	return httpServer.Shutdown(shutdownCtx)
}
