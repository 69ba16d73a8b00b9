package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"portfolio-backend/metrics"
	"portfolio-backend/models"
)

// ErrEmptySlug is returned when a view is recorded without a slug.
var ErrEmptySlug = errors.New("slug is required")

// ViewStore persists per-slug page view counts.
type ViewStore interface {
	Increment(ctx context.Context, slug string) error
	All(ctx context.Context) ([]models.ViewCount, error)
	// Get returns 0 for a slug that was never viewed.
	Get(ctx context.Context, slug string) (int64, error)
	Ping(ctx context.Context) error
}

// ViewCounter records views in the background and reads them back.
type ViewCounter struct {
	store   ViewStore
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewViewCounter(store ViewStore, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *ViewCounter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewCounter{store: store, timeout: timeout, logger: logger, metrics: m}
}

// Increment records one view for slug without blocking the caller. Errors
// are logged and counted, never returned.
func (v *ViewCounter) Increment(slug string) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		v.metrics.ObserveViewIncrement(metrics.OutcomeInvalid)
		return
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
		defer cancel()

		if err := v.store.Increment(ctx, slug); err != nil {
			v.metrics.ObserveViewIncrement(metrics.OutcomeError)
			v.logger.Error("increment view failed", "slug", slug, "error", err)
			return
		}
		v.metrics.ObserveViewIncrement(metrics.OutcomeOK)
	}()
}

// Wait blocks until every pending Increment has finished.
func (v *ViewCounter) Wait() {
	v.wg.Wait()
}

// GetAllCounts returns every recorded slug with its count.
func (v *ViewCounter) GetAllCounts(ctx context.Context) ([]models.ViewCount, error) {
	counts, err := v.store.All(ctx)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []models.ViewCount{}
	}
	return counts, nil
}

// GetViewCount never fails: unknown slugs and store errors read as 0.
func (v *ViewCounter) GetViewCount(ctx context.Context, slug string) int64 {
	n, err := v.store.Get(ctx, strings.TrimSpace(slug))
	if err != nil {
		v.logger.Warn("read view count failed", "slug", slug, "error", err)
		return 0
	}
	return n
}

// Ping reports whether the backing store is reachable.
func (v *ViewCounter) Ping(ctx context.Context) error {
	return v.store.Ping(ctx)
}
