package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/minting"
)

// MintReconciler flags mints whose confirmation never arrived and re-checks them on chain
//
//go:generate mockgen -source=reconciliation.go -destination=../mocks/sweeper.go -package=mocks -mock_names=MintReconciler=MockMintReconciler,PaymentReconciler=MockPaymentReconciler
type MintReconciler interface {
	SweepExpired(ctx context.Context) ([]uint64, error)
	ReconcileExpired(ctx context.Context) (*minting.RecoveryReport, error)
}

// PaymentReconciler re-subscribes payments that are still waiting for an outcome
type PaymentReconciler interface {
	Recover(ctx context.Context) (int, error)
}

// ReconciliationConfig holds the job intervals of the reconciliation sweeper
type ReconciliationConfig struct {
	ExpiryInterval        time.Duration
	ReconcileInterval     time.Duration
	PaymentResyncInterval time.Duration
}

// reconciliationSweeper runs the periodic reconciliation jobs on a gocron scheduler
type reconciliationSweeper struct {
	config    ReconciliationConfig
	mints     MintReconciler
	payments  PaymentReconciler
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewReconciliationSweeper creates a sweeper that expires stale confirmation listeners, re-checks the
// expired mints on chain and keeps submitted payments subscribed. A zero interval disables its job.
func NewReconciliationSweeper(config ReconciliationConfig, mints MintReconciler, payments PaymentReconciler) Sweeper {
	return &reconciliationSweeper{
		config:    config,
		mints:     mints,
		payments:  payments,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (s *reconciliationSweeper) Name() string {
	return "reconciliation-sweeper"
}

// Start schedules the jobs and blocks until the context is canceled or Stop is called
func (s *reconciliationSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer close(s.stoppedCh)

	scheduler := gocron.NewScheduler(time.UTC)

	if s.config.ExpiryInterval > 0 {
		if _, err := scheduler.Every(s.config.ExpiryInterval).WaitForSchedule().SingletonMode().Do(s.sweepExpired, ctx); err != nil {
			return fmt.Errorf("failed to schedule expiry job: %w", err)
		}
	}
	if s.config.ReconcileInterval > 0 {
		if _, err := scheduler.Every(s.config.ReconcileInterval).WaitForSchedule().SingletonMode().Do(s.reconcileExpired, ctx); err != nil {
			return fmt.Errorf("failed to schedule reconcile job: %w", err)
		}
	}
	if s.config.PaymentResyncInterval > 0 {
		if _, err := scheduler.Every(s.config.PaymentResyncInterval).WaitForSchedule().SingletonMode().Do(s.resyncPayments, ctx); err != nil {
			return fmt.Errorf("failed to schedule payment job: %w", err)
		}
	}

	logger.InfoCtx(ctx, "Starting reconciliation sweeper",
		zap.Duration("expiry_interval", s.config.ExpiryInterval),
		zap.Duration("reconcile_interval", s.config.ReconcileInterval),
		zap.Duration("payment_resync_interval", s.config.PaymentResyncInterval))

	scheduler.StartAsync()

	select {
	case <-ctx.Done():
		logger.InfoCtx(ctx, "Reconciliation sweeper stopping due to context cancellation")
	case <-s.stopChan:
		logger.InfoCtx(ctx, "Reconciliation sweeper stop requested")
	}

	scheduler.Stop()
	return nil
}

// Stop ends Start and waits for it to return, bounded by ctx
func (s *reconciliationSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Reconciliation sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

func (s *reconciliationSweeper) sweepExpired(ctx context.Context) {
	ids, err := s.mints.SweepExpired(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to sweep expired mints: %w", err))
		return
	}
	if len(ids) > 0 {
		logger.InfoCtx(ctx, "Swept expired mints", zap.Int("count", len(ids)))
	}
}

func (s *reconciliationSweeper) reconcileExpired(ctx context.Context) {
	report, err := s.mints.ReconcileExpired(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to reconcile expired mints: %w", err))
		return
	}
	if report.Unresolved > 0 {
		logger.DebugCtx(ctx, "Expired mints still unresolved", zap.Int("count", report.Unresolved))
	}
}

func (s *reconciliationSweeper) resyncPayments(ctx context.Context) {
	if _, err := s.payments.Recover(ctx); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to re-subscribe payments: %w", err))
	}
}
