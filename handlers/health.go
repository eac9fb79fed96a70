package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// Health serves liveness, readiness and metrics.
type Health struct {
	started time.Time
	timeout time.Duration
	checks  map[string]Check
}

func NewHealth(checks map[string]Check) *Health {
	if checks == nil {
		checks = map[string]Check{}
	}
	return &Health{started: time.Now(), timeout: 2 * time.Second, checks: checks}
}

// Register mounts /health, /ready and, when gatherer is non-nil, /metrics.
func (h *Health) Register(r gin.IRoutes, gatherer prometheus.Gatherer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", h.Ready)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// Ready answers 200 only when every configured dependency check passes.
func (h *Health) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	ready := true
	deps := map[string]bool{}
	errs := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = false
			errs[name] = err.Error()
			ready = false
			continue
		}
		deps[name] = true
	}

	body := gin.H{"status": "ready", "deps": deps, "uptime": time.Since(h.started).String()}
	if !ready {
		body["status"] = "not_ready"
		body["errors"] = errs
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
