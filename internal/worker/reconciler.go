// Package worker runs the background reconciler that repairs mutual swipe
// pairs left without a match row by concurrent opposing swipes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourorg/talentmatch/internal/service"
)

const reconcileBatchLimit = 200

// Reconciler periodically sweeps for mutual positive swipe pairs that have
// no match and creates the missing matches.
type Reconciler struct {
	swipeService *service.SwipeService
	cron         *cron.Cron
	spec         string // cron spec, e.g. "@every 1m"
	logger       *slog.Logger
}

// NewReconciler creates a reconciler firing on the given interval
func NewReconciler(swipeService *service.SwipeService, interval time.Duration, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		swipeService: swipeService,
		cron:         cron.New(),
		spec:         fmt.Sprintf("@every %s", interval),
		logger:       logger,
	}
}

// Start registers the sweep and starts the scheduler. One sweep runs
// immediately so a restart repairs pending pairs without waiting for the
// first tick.
func (r *Reconciler) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.spec, func() {
		r.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	r.cron.Start()
	r.logger.Info("reconciler started", slog.String("spec", r.spec))

	go r.sweep(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler
func (r *Reconciler) Stop() {
	r.cron.Stop()
	r.logger.Info("reconciler stopped")
}

func (r *Reconciler) sweep(ctx context.Context) {
	repaired, err := r.swipeService.Reconcile(ctx, reconcileBatchLimit)
	if err != nil {
		r.logger.Error("reconcile sweep failed", slog.String("error", err.Error()))
		return
	}
	if repaired > 0 {
		r.logger.Info("reconcile sweep repaired matches", slog.Int("repaired", repaired))
	}
}
