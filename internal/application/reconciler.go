package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/metrics"
)

// ReconcileResult reports how many stale bookings a sweep transitioned.
type ReconcileResult struct {
	NoShows   int64 `json:"no_shows"`
	Overstays int64 `json:"overstays"`
}

// Reconciler sweeps bookings the calendar has left behind: upcoming bookings
// whose check-in day passed become no_show, checked-in bookings whose
// check-out day passed become overstay. Both updates are status-conditioned
// in the store, so a sweep racing a concurrent check-in or check-out simply
// loses that row.
type Reconciler struct {
	bookings booking.Repository
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// ReconcilerOption tweaks reconciler construction.
type ReconcilerOption func(*Reconciler)

// WithReconcilerClock overrides the wall clock, used by tests to pin "today".
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(bookings booking.Repository, interval time.Duration, logger *zap.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		bookings: bookings,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile runs one sweep against the current day. A booking checking in on
// its scheduled day is never touched: only dates strictly before today are
// stale.
func (r *Reconciler) Reconcile(ctx context.Context) (ReconcileResult, error) {
	today := booking.DateOnly(r.now())

	noShows, err := r.bookings.MarkNoShows(ctx, today)
	if err != nil {
		return ReconcileResult{}, err
	}
	overstays, err := r.bookings.MarkOverstays(ctx, today)
	if err != nil {
		return ReconcileResult{NoShows: noShows}, err
	}

	if noShows > 0 {
		metrics.ReconcilerTransitions.WithLabelValues(booking.StatusNoShow.String()).Add(float64(noShows))
	}
	if overstays > 0 {
		metrics.ReconcilerTransitions.WithLabelValues(booking.StatusOverstay.String()).Add(float64(overstays))
	}
	if noShows > 0 || overstays > 0 {
		r.logger.Info("reconciled stale bookings",
			zap.Int64("no_shows", noShows),
			zap.Int64("overstays", overstays))
	}
	return ReconcileResult{NoShows: noShows, Overstays: overstays}, nil
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
// Sweep failures are logged and retried on the next tick.
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info("reconciler started", zap.Duration("interval", r.interval))

	if _, err := r.Reconcile(ctx); err != nil {
		r.logger.Error("reconcile sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if _, err := r.Reconcile(ctx); err != nil {
				r.logger.Error("reconcile sweep failed", zap.Error(err))
			}
		}
	}
}
