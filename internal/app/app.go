package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/slicehouse/combo-configurator/internal/domain/combo"
	"github.com/slicehouse/combo-configurator/internal/handler"
	"github.com/slicehouse/combo-configurator/internal/storage/postgres"
	"github.com/slicehouse/combo-configurator/pkg/health"
	"github.com/slicehouse/combo-configurator/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	probes := health.New()
	probes.AddReadiness("postgres", 5*time.Second, health.Ping(pool))
	probes.AddLiveness("goroutines", time.Second, health.GoroutineCount(10000))
	probes.AddLiveness("gc-pause", time.Second, health.GCMaxPause(500*time.Millisecond))
	probes.SetReady(true)

	rules := combo.DefaultRules()
	rules.WingsPiecesPerUnit = cfg.Combo.WingsPiecesPerUnit

	h := handler.NewHandler(
		handler.Config{Rules: rules},
		postgres.NewComboRepository(pool),
		postgres.NewCatalogRepository(pool),
		postgres.NewCartRepository(pool),
	)

	mux := h.Routes()
	mux.HandleFunc("GET /livez", probes.LiveEndpoint)
	mux.HandleFunc("GET /readyz", probes.ReadyEndpoint)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowedOrigins: cfg.CORS.Origins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				MaxAge:         "86400",
			}),
			httpmiddleware.RateLimit(httpmiddleware.RateLimitConfig{
				Requests:        cfg.RateLimit.Max,
				Window:          cfg.RateLimit.Window,
				CleanupInterval: 5 * time.Minute,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("combo-configurator",
				m.MeterProvider(), m.TracerProvider(),
				httpmiddleware.MuxRouteFinder(mux),
			),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: flip readiness, let the balancer drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		probes.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
