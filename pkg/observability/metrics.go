package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// Public lookup outcomes
const (
	LookupCacheHit  = "cache_hit"
	LookupStoreHit  = "store_hit"
	LookupNotFound  = "not_found"
	LookupFailed    = "error"
	lookupResultKey = "result"
)

// PatientMetrics groups the domain instruments of the patient service
type PatientMetrics struct {
	created       metric.Int64Counter
	deleted       metric.Int64Counter
	publicLookups metric.Int64Counter
}

// NewPatientMetrics registers the patient instruments on meter
func NewPatientMetrics(meter metric.Meter) (*PatientMetrics, error) {
	created, err := meter.Int64Counter("patients.created",
		metric.WithDescription("Patient records created"))
	if err != nil {
		return nil, fmt.Errorf("failed to create patients.created counter: %w", err)
	}

	deleted, err := meter.Int64Counter("patients.deleted",
		metric.WithDescription("Patient records soft-deleted"))
	if err != nil {
		return nil, fmt.Errorf("failed to create patients.deleted counter: %w", err)
	}

	publicLookups, err := meter.Int64Counter("patients.public_lookups",
		metric.WithDescription("Public QR lookups by result"))
	if err != nil {
		return nil, fmt.Errorf("failed to create patients.public_lookups counter: %w", err)
	}

	return &PatientMetrics{
		created:       created,
		deleted:       deleted,
		publicLookups: publicLookups,
	}, nil
}

func (m *PatientMetrics) Created(ctx context.Context) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1)
}

func (m *PatientMetrics) Deleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.deleted.Add(ctx, 1)
}

func (m *PatientMetrics) PublicLookup(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.publicLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(lookupResultKey, result)))
}
