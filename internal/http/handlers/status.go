package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const statusCheckTimeout = 2 * time.Second

const (
	stateOnline   = "online"
	stateOffline  = "offline"
	stateDisabled = "disabled"
)

// StatusDependency describes one backing dependency. Check is optional; a configured dependency
// without one is reported online.
type StatusDependency struct {
	Name       string
	Configured bool
	Required   bool
	Check      func(ctx context.Context) error
}

type StatusHandler struct {
	service string
	version string
	deps    []StatusDependency
}

func NewStatusHandler(service, version string, deps ...StatusDependency) *StatusHandler {
	return &StatusHandler{service: service, version: version, deps: deps}
}

// GET /api/status
// 200 with status "operational", or 503 "degraded" when a required dependency is offline.
func (h *StatusHandler) Status(c *gin.Context) {
	states := make([]string, len(h.deps))
	errs := make([]error, len(h.deps))
	g, ctx := errgroup.WithContext(c.Request.Context())
	for i, p := range h.deps {
		switch {
		case !p.Configured:
			states[i] = stateDisabled
			continue
		case p.Check == nil:
			states[i] = stateOnline
			continue
		}
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, statusCheckTimeout)
			defer cancel()
			errs[i] = p.Check(pctx)
			return nil
		})
	}
	_ = g.Wait()
	for i, err := range errs {
		if states[i] != "" {
			continue
		}
		states[i] = stateOnline
		if err != nil {
			states[i] = stateOffline
			_ = c.Error(err)
		}
	}

	overall, code := "operational", http.StatusOK
	services := make(gin.H, len(h.deps))
	for i, p := range h.deps {
		services[p.Name] = states[i]
		if p.Required && states[i] != stateOnline {
			overall, code = "degraded", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":    overall,
		"service":   h.service,
		"version":   h.version,
		"services":  services,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
