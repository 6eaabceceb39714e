// Package worker runs the periodic sweeps: expiring tasks, pushing pending
// payments to the provider, polling processing ones, and pruning sessions.
package worker

import (
	"context"
	"log"
	"time"

	"taskmarket/internal/services"
	"taskmarket/internal/store"
)

type Worker struct {
	Store    *store.Store
	Payments *services.PaymentService
	Interval time.Duration
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if err := w.SyncOnce(ctx); err != nil {
			log.Printf("sync error: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SyncOnce runs every sweep; each is independent, so one failing does not
// starve the others.
func (w *Worker) SyncOnce(ctx context.Context) error {
	now := time.Now().UTC()

	if n, err := w.Store.MarkTasksExpired(ctx, now); err != nil {
		log.Printf("task expiry sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("expired %d tasks", n)
	}

	if err := w.Payments.ReleasePending(ctx); err != nil {
		log.Printf("pending payment sweep failed: %v", err)
	}
	if err := w.Payments.SettleProcessing(ctx); err != nil {
		log.Printf("processing payment sweep failed: %v", err)
	}

	if n, err := w.Store.DeleteExpiredSessions(ctx, now); err != nil {
		log.Printf("session cleanup failed: %v", err)
	} else if n > 0 {
		log.Printf("deleted %d expired sessions", n)
	}

	return ctx.Err()
}
