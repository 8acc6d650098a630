package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"quickgpt/internal/model"
)

type StaleCommitLister interface {
	ListStale(ctx context.Context, status string, before time.Time, limit int) ([]model.CreditCommit, error)
}

type CommitSettler interface {
	CommitApplier
	Release(ctx context.Context, commitID string) error
}

type ReconcilerConfig struct {
	Interval       time.Duration
	GeneratedAfter time.Duration
	ReservedAfter  time.Duration
	BatchSize      int
}

// Reconciler finishes commits that the request path left behind: generated
// commits whose queue message was lost are applied, and reservations whose
// request died mid-generation are released.
type Reconciler struct {
	commits StaleCommitLister
	settler CommitSettler
	cfg     ReconcilerConfig
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReconciler(commits StaleCommitLister, settler CommitSettler, cfg ReconcilerConfig) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Reconciler{
		commits: commits,
		settler: settler,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	if r.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				applied, released := r.RunOnce(runCtx)
				if applied > 0 || released > 0 {
					logrus.WithFields(logrus.Fields{
						"applied":  applied,
						"released": released,
					}).Info("reconciled stale credit commits")
				}
			}
		}
	}()
}

// RunOnce makes a single pass and reports how many commits it settled.
func (r *Reconciler) RunOnce(ctx context.Context) (applied, released int) {
	now := r.now()
	applied = r.sweep(ctx, model.CommitGenerated, now.Add(-r.cfg.GeneratedAfter), r.settler.Apply)
	released = r.sweep(ctx, model.CommitReserved, now.Add(-r.cfg.ReservedAfter), r.settler.Release)
	return applied, released
}

func (r *Reconciler) sweep(ctx context.Context, status string, before time.Time, settle func(context.Context, string) error) int {
	commits, err := r.commits.ListStale(ctx, status, before, r.cfg.BatchSize)
	if err != nil {
		logrus.WithError(err).WithField("status", status).Error("list stale commits failed")
		return 0
	}

	settled := 0
	for _, commit := range commits {
		if err := settle(ctx, commit.ID); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"commit_id": commit.ID,
				"status":    status,
			}).Error("settle stale commit failed")
			continue
		}
		settled++
	}
	return settled
}

func (r *Reconciler) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
