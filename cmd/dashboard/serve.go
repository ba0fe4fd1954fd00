package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	dashhttp "github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/http"
	cfnats "github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/nats"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/natskv"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/otel"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/prometheus"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/ristretto"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/tiered"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/ws"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/logger"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/messagequeue"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/service"
)

const (
	idempotencyTTL   = 24 * time.Hour
	idempotencyMaxMB = 16
	shutdownTimeout  = 10 * time.Second
)

type serveFlags struct {
	port      string
	logLevel  string
	storeMode string
	dsn       string
	natsURL   string
	migrate   bool
}

func (f *serveFlags) overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	if cmd.Flags().Changed("port") {
		o.Port = &f.port
	}
	if cmd.Flags().Changed("log-level") {
		o.LogLevel = &f.logLevel
	}
	if cmd.Flags().Changed("store") {
		o.StoreMode = &f.storeMode
	}
	if cmd.Flags().Changed("dsn") {
		o.DSN = &f.dsn
	}
	if cmd.Flags().Changed("nats-url") {
		o.NatsURL = &f.natsURL
	}
	return o
}

func newServeCmd(a *app) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and websocket notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(f.overrides(cmd))
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, f.migrate)
		},
	}
	cmd.Flags().StringVar(&f.port, "port", "", "HTTP listen port")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&f.storeMode, "store", "", "entity store (local|remote)")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "PostgreSQL connection string for remote mode")
	cmd.Flags().StringVar(&f.natsURL, "nats-url", "", "NATS server URL; empty disables cross-instance events")
	cmd.Flags().BoolVar(&f.migrate, "migrate", true, "apply pending migrations on start (remote mode)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, migrate bool) error {
	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Mode,
		"slot", cfg.Store.Slot,
		"auth", cfg.Auth.Enabled,
		"log_level", cfg.Logging.Level,
	)

	// --- Observability ---

	shutdownOTEL, err := otel.Setup(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTEL(sctx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()
	metrics, err := otel.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}
	prom := prometheus.New()

	// --- Infrastructure ---

	queue, err := connectNATS(ctx, cfg)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	if queue != nil {
		defer func() {
			if err := queue.Drain(); err != nil {
				slog.Warn("nats drain", "error", err)
			}
		}()
	}

	deps, err := openStore(ctx, cfg, queue, migrate)
	if err != nil {
		return err
	}
	defer deps.close()

	snapCache, closeCache, err := openSnapshotCache(ctx, cfg, queue)
	if err != nil {
		return err
	}
	defer closeCache()

	idemCache, err := ristretto.NewMB(idempotencyMaxMB)
	if err != nil {
		return fmt.Errorf("idempotency cache: %w", err)
	}
	defer idemCache.Close()

	// --- Services ---

	hub := ws.NewHub(cfg.Server.CORSOrigin)
	defer hub.Close()

	var mq messagequeue.Queue
	if queue != nil {
		mq = queue
	}

	snaps := service.NewSnapshots(snapCache, cfg.Cache.SnapshotTTL, metrics)
	coord := service.NewCoordinator(snaps, mq, hub, metrics)
	authSvc := service.NewAuthService(deps.store, &cfg.Auth)
	employees := service.NewEmployeeService(deps.store, deps.store, authSvc, snaps, coord)
	tasks := service.NewTaskService(deps.store, snaps, coord, cfg.Location(), cfg.Store.Mode == config.StoreLocal)
	clients := service.NewClientService(deps.store, snaps, coord, employees)

	if cfg.Auth.Enabled {
		if err := authSvc.SeedDefaultAdmin(middleware.WithUser(ctx, &middleware.DefaultAdmin)); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	if queue != nil {
		cancelSub, err := queue.Subscribe(ctx, messagequeue.SubjectAllChanged, coord.HandleChanged)
		if err != nil {
			return fmt.Errorf("change subscriber: %w", err)
		}
		defer cancelSub()
	}

	// --- HTTP ---

	handlers := &dashhttp.Handlers{
		Tasks:       tasks,
		Clients:     clients,
		Employees:   employees,
		Auth:        authSvc,
		Coordinator: coord,
		Config:      cfg,
		Breaker:     deps.breaker,
		Version:     version,
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(dashhttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(dashhttp.SecurityHeaders)
	r.Use(dashhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(prom.Middleware)
	r.Use(otel.HTTPMiddleware(cfg.OTEL.ServiceName))
	r.Use(middleware.Auth(authSvc, cfg.Auth.Enabled))
	r.Use(limiter.Handler)

	r.Handle("/metrics", prom.Handler())
	r.Get("/ws", hub.HandleWS)

	// The websocket is long-lived; only API requests get a deadline.
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
		r.Use(middleware.Idempotency(idemCache, idempotencyTTL))
		dashhttp.MountRoutes(r, handlers)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// openSnapshotCache builds the snapshot cache: ristretto alone, or ristretto
// in front of a shared NATS KV bucket when NATS is available.
func openSnapshotCache(ctx context.Context, cfg *config.Config, queue *cfnats.Queue) (cache.Cache, func(), error) {
	l1, err := ristretto.NewMB(cfg.Cache.L1MaxSizeMB)
	if err != nil {
		return nil, nil, fmt.Errorf("l1 cache: %w", err)
	}
	closeL1 := func() {
		slog.Info("snapshot cache closed", "l1_hit_ratio", l1.HitRatio())
		l1.Close()
	}
	if queue == nil {
		return l1, closeL1, nil
	}

	kv, err := queue.KeyValue(ctx, cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
	if err != nil {
		l1.Close()
		return nil, nil, fmt.Errorf("l2 cache: %w", err)
	}
	return tiered.New(l1, natskv.New(kv), cfg.Cache.SnapshotTTL), closeL1, nil
}
