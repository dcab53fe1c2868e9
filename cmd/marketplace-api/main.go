package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/auth"
	"github.com/MikeMC777/construmarket/internal/config"
	"github.com/MikeMC777/construmarket/internal/db"
	"github.com/MikeMC777/construmarket/internal/events"
	"github.com/MikeMC777/construmarket/internal/health"
	"github.com/MikeMC777/construmarket/internal/httpx"
	"github.com/MikeMC777/construmarket/internal/idempotency"
	"github.com/MikeMC777/construmarket/internal/logging"
	"github.com/MikeMC777/construmarket/internal/memstore"
	"github.com/MikeMC777/construmarket/internal/metrics"
	"github.com/MikeMC777/construmarket/internal/order"
	"github.com/MikeMC777/construmarket/internal/product"
	"github.com/MikeMC777/construmarket/internal/user"
)

// stores is the persistence layer selected by STORE_DRIVER.
type stores struct {
	users    user.Repository
	products product.Repository
	orders   order.Store
	pool     *pgxpool.Pool
}

func openStores(ctx context.Context, cfg config.Config, log *logrus.Logger) (stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("[store] using in-memory store, data is lost on restart")
		m := memstore.New()
		return stores{users: m.Users(), products: m.Products(), orders: m.Orders()}, nil
	}

	pool, err := db.Connect(ctx, cfg.PostgresDSN, 30, 2*time.Second, log)
	if err != nil {
		return stores{}, err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		log.Info("[store] schema migrated")
	}
	return stores{
		users:    user.NewPGRepo(pool),
		products: product.NewPGRepo(pool),
		orders:   order.NewPGStore(pool),
		pool:     pool,
	}, nil
}

func openIdempotency(cfg config.Config, log *logrus.Logger) idempotency.Store {
	if cfg.RedisURL == "" {
		return idempotency.NewMemory(cfg.IdempotencyTTL)
	}
	s, err := idempotency.NewRedisStore(cfg.RedisURL, cfg.IdempotencyTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	return s
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	cfg.Log(log)
	gin.SetMode(cfg.GinMode)

	if err := httpx.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	idem := openIdempotency(cfg, log)
	defer idem.Close()

	publisher := events.New(events.ParseBrokers(cfg.KafkaBrokers), log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("failed to close event publisher")
		}
	}()

	reg := metrics.NewRegistry()

	checker := health.NewChecker(2 * time.Second)
	if st.pool != nil {
		checker.Add("postgres", st.pool.Ping)
	}
	checker.Add("idempotency", idem.Ping)

	users := user.NewService(st.users, log)
	a := app{
		log:      log,
		users:    users,
		products: product.NewService(st.products, log),
		orders: order.NewService(st.orders, st.products, st.users, log,
			order.WithPublisher(publisher),
			order.WithIdempotency(idem),
			order.WithMetrics(reg),
		),
		gateway:    auth.NewGateway(cfg.JWTSecret, cfg.JWTExpire, st.users),
		health:     checker,
		metrics:    reg,
		corsOrigin: cfg.CORSOrigin,
	}

	grpcHealth := health.NewGRPCServer(checker, 10*time.Second)
	go grpcHealth.Watch(ctx)
	go func() {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.WithError(err).Error("[grpc] failed to listen")
			return
		}
		log.WithField("addr", cfg.GRPCAddr).Info("[grpc] health server listening")
		if err := grpcHealth.Serve(lis); err != nil {
			log.WithError(err).Error("[grpc] health server stopped")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("marketplace API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	grpcHealth.Stop()
	log.Info("server gracefully stopped")
}
