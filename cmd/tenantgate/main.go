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
	"golang.org/x/sync/errgroup"

	tghttp "github.com/Strob0t/tenantgate/internal/adapter/http"
	"github.com/Strob0t/tenantgate/internal/adapter/kratos"
	tgnats "github.com/Strob0t/tenantgate/internal/adapter/nats"
	tgotel "github.com/Strob0t/tenantgate/internal/adapter/otel"
	"github.com/Strob0t/tenantgate/internal/adapter/postgres"
	"github.com/Strob0t/tenantgate/internal/adapter/ristretto"
	"github.com/Strob0t/tenantgate/internal/config"
	"github.com/Strob0t/tenantgate/internal/logger"
	"github.com/Strob0t/tenantgate/internal/middleware"
	"github.com/Strob0t/tenantgate/internal/port/cache"
	"github.com/Strob0t/tenantgate/internal/port/messagequeue"
	"github.com/Strob0t/tenantgate/internal/service"
	"github.com/Strob0t/tenantgate/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	if err := run(flags); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(flags config.CLIFlags) error {
	cfg, path, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	log.Info("config loaded",
		"file", path,
		"port", cfg.Server.Port,
		"environment", cfg.Server.Environment,
		"enforce_tenancy", cfg.Gate.EnforceTenancy,
		"min_tier", cfg.Gate.MinTier,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	shutdownOtel, err := tgotel.Init(ctx, cfg.Logging.Service, cfg.Server.Environment, cfg.OTEL, log)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOtel(sctx); err != nil {
			log.Warn("otel shutdown", "error", err)
		}
	}()
	metrics, err := tgotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}
	if err := metrics.ObserveLogDrops(closeLog.DroppedCount); err != nil {
		return fmt.Errorf("otel log drops: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	log.Info("postgres connected")
	store := postgres.NewStore(pool, cfg.Postgres.QueryTimeout)

	var tenantCache cache.TenantCache
	if cfg.Cache.TenantTTL > 0 {
		rc, err := ristretto.New(cfg.Cache)
		if err != nil {
			return fmt.Errorf("tenant cache: %w", err)
		}
		defer rc.Close()
		tenantCache = rc
	}

	// --- Services ---
	verifier := kratos.NewVerifier(cfg.Identity, cfg.Session.CookieName)
	breaker := service.NewVerifierBreaker(cfg.Breaker, log)
	authSvc := service.NewAuthService(verifier, breaker, cfg.Identity.Timeout, metrics, log)
	memberSvc := service.NewMembershipService(store)
	tenantSvc := service.NewTenantService(store, tenantCache, metrics, log)
	profileSvc := service.NewProfileService(store, log)
	pendingSvc := service.NewPendingService(store, log)
	current := service.NewCurrent(profileSvc, pendingSvc)

	// NATS is optional: without it cached tenants expire by TTL only.
	var (
		bus       messagequeue.Subscriber
		publisher messagequeue.Publisher
	)
	if cfg.NATS.URL != "" && tenantCache != nil {
		q, err := tgnats.Connect(ctx, cfg.NATS.URL, log)
		if err != nil {
			log.Warn("nats unavailable, tenant cache relies on ttl", "error", err)
		} else {
			defer func() { _ = q.Close() }()
			cancelSub, err := q.Subscribe(ctx, cfg.NATS.Subject, tenantSvc.HandleTenantUpdated)
			if err != nil {
				return fmt.Errorf("nats subscribe %s: %w", cfg.NATS.Subject, err)
			}
			defer cancelSub()
			bus, publisher = q, q
		}
	}

	// --- HTTP ---
	codec, err := session.NewCodec(cfg.Session, cfg.Server, log)
	if err != nil {
		return fmt.Errorf("session codec: %w", err)
	}

	handlers := &tghttp.Handlers{
		Current:     current,
		Memberships: memberSvc,
		Codec:       codec,
		DB:          store,
		Bus:         bus,
		Tenants:     tenantSvc,
		Publisher:   publisher,
		TenantTopic: cfg.NATS.Subject,
		PortalURL:   cfg.Gate.PortalURL,
		Log:         log,
	}

	var upstream http.Handler
	if cfg.Upstream.URL != "" {
		upstream, err = tghttp.NewUpstreamProxy(cfg.Upstream.URL, log)
		if err != nil {
			return fmt.Errorf("upstream: %w", err)
		}
	}

	gate, err := middleware.NewGatekeeper(cfg, codec, authSvc, memberSvc, tenantSvc, log,
		middleware.WithUnavailableHandler(http.HandlerFunc(handlers.Unavailable)),
		middleware.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("gatekeeper: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(time.Minute, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(tgotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(tghttp.Logger(log))
	r.Use(tghttp.SecurityHeaders)
	r.Use(limiter.Handler)
	r.Use(gate.Handler)
	tghttp.MountRoutes(r, handlers, upstream)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
