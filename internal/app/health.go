package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/easyped-service/internal/dto"
)

const (
	healthCheckTimeout = 2 * time.Second
	isoMillis          = "2006-01-02T15:04:05.000Z07:00"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	deps map[string]Pinger
	now  func() time.Time
}

func NewHealthChecker(deps map[string]Pinger) *HealthChecker {
	return &HealthChecker{
		deps: deps,
		now:  time.Now,
	}
}

func (h *HealthChecker) check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	errs := make(chan error, len(h.deps))

	for name, dep := range h.deps {
		go func() {
			if err := dep.Ping(ctx); err != nil {
				errs <- errors.New(name + ": " + err.Error())
				return
			}
			errs <- nil
		}()
	}

	collected := make([]error, 0, len(h.deps))
	for range h.deps {
		collected = append(collected, <-errs)
	}
	return errors.Join(collected...)
}

// Live reports that the process is serving requests
func (h *HealthChecker) Live(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC().Format(isoMillis),
	})
}

// Ready reports whether Postgres and Redis answer
func (h *HealthChecker) Ready(c *gin.Context) {
	if err := h.check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "pass",
	})
}
