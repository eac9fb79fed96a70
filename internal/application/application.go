package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/es-stream-helper/docgate/handlers"
	"github.com/es-stream-helper/docgate/internal/config"
	"github.com/es-stream-helper/docgate/internal/document/handler"
	"github.com/es-stream-helper/docgate/internal/document/service"
	"github.com/es-stream-helper/docgate/internal/engine"
	"github.com/es-stream-helper/docgate/internal/oidc"
	"github.com/es-stream-helper/docgate/pkg/logger"
	"github.com/es-stream-helper/docgate/pkg/metrics"
	"github.com/es-stream-helper/docgate/pkg/middleware"
)

// App is the HTTP gateway process: engine, gateway, router and server.
type App struct {
	cfg     *config.Config
	gateway service.Gateway
	router  *gin.Engine
	httpSrv *http.Server
	closers []func()
}

// New wires the application from cfg. Optional dependencies (OIDC, Redis)
// that fail to initialize are logged and left out, as readiness reports them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng, closeEngine, err := NewEngine(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	a := &App{cfg: cfg, closers: []func(){closeEngine}}
	a.gateway = service.New(eng, cfg.Engine.Index)

	checks := map[string]handlers.Check{}
	if p, ok := eng.(engine.Pinger); ok {
		checks["engine"] = p.Ping
	}

	var limiterClient *redis.Client
	if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
		limiterClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := limiterClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis for rate limiting: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		checks["redis"] = func(ctx context.Context) error { return limiterClient.Ping(ctx).Err() }
		a.closers = append(a.closers, func() { _ = limiterClient.Close() })
	}

	verifier, verr := newVerifier(ctx, cfg)
	if verr != nil {
		logger.Warnf("failed to initialize token verifier: %v", verr)
		checks["oidc"] = func(context.Context) error { return verr }
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	a.router = newRouter(cfg, a.gateway, verifier, limiterClient, handlers.NewHealth(checks), reg)
	a.httpSrv = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

// newVerifier prefers Keycloak OIDC and falls back to a shared JWT secret.
// A nil verifier with a nil error means auth is disabled.
func newVerifier(ctx context.Context, cfg *config.Config) (middleware.Verifier, error) {
	switch {
	case cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "":
		v, err := oidc.NewVerifier(ctx, oidc.KeycloakIssuer(cfg.Keycloak.URL, cfg.Keycloak.Realm), cfg.Keycloak.ClientID)
		if err != nil {
			return nil, err
		}
		return v, nil
	case cfg.JWT.Secret != "":
		v, err := oidc.NewHMACVerifier(cfg.JWT.Secret)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}

func newRouter(cfg *config.Config, gw service.Gateway, verifier middleware.Verifier, limiterClient *redis.Client, health *handlers.Health, reg *prometheus.Registry) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	health.Register(r, reg)
	handlers.RegisterSwagger(r)

	docs := r.Group("/")
	if verifier != nil {
		docs.Use(middleware.AuthMiddleware(verifier))
	} else if cfg.Keycloak.URL != "" || cfg.JWT.Secret != "" {
		// auth was requested but could not be set up: refuse rather than serve open
		docs.Use(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication unavailable"})
		})
	}
	if cfg.RateLimit.Enabled {
		if limiterClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			docs.Use(middleware.RedisRateLimitMiddleware(limiterClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			docs.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handler.New(gw).Register(docs)
	return r
}

// Gateway exposes the document gateway for non-HTTP callers such as export.
func (a *App) Gateway() service.Gateway { return a.gateway }

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.router }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", a.httpSrv.Addr)
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases backend and Redis connections. Safe to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
