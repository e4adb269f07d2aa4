package challenge

import (
	"context"
	"log"
	"time"
)

// ProgressStore is the durable per-user completed-days counter.
type ProgressStore interface {
	GetProgress(ctx context.Context, userKey string) (int, error)
	SetProgress(ctx context.Context, userKey string, completedDays int) error
}

// Reconciler merges the durable progress counter with the count derived from
// the cached day set. The authoritative value is max(durable, local); when
// local is ahead the durable side is brought up asynchronously.
type Reconciler struct {
	progress ProgressStore
	cache    Cache

	// writeTimeout bounds the background write-back.
	writeTimeout time.Duration
}

func NewReconciler(progress ProgressStore, cache Cache) *Reconciler {
	return &Reconciler{
		progress:     progress,
		cache:        cache,
		writeTimeout: 5 * time.Second,
	}
}

// Reconcile returns the authoritative completed count for the user key.
// It never fails: a durable read error degrades to 0 with a warning, and the
// write-back when local is ahead is fire-and-forget, so the returned value is
// available immediately and the durable counter never decreases.
func (r *Reconciler) Reconcile(ctx context.Context, userKey string) int {
	durable, err := r.progress.GetProgress(ctx, userKey)
	if err != nil {
		log.Printf("ProgressReconciler: durable read for %s failed, assuming 0: %v", userKey, err)
		durable = 0
	}

	local := 0
	days, err := r.cache.GetChallenge(ctx, userKey)
	if err != nil {
		log.Printf("ProgressReconciler: cache read for %s failed: %v", userKey, err)
	} else if days != nil {
		local = CountCompleted(days)
	}

	if local > durable {
		go r.writeBack(userKey, local)
		return local
	}
	return durable
}

// ResetProgress zeroes the durable counter, best-effort, after a full
// challenge reset.
func (r *Reconciler) ResetProgress(ctx context.Context, userKey string) {
	if err := r.progress.SetProgress(ctx, userKey, 0); err != nil {
		log.Printf("ProgressReconciler: %v", &PersistenceWriteError{Op: "reset progress for " + userKey, Err: err})
	}
}

func (r *Reconciler) writeBack(userKey string, count int) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.progress.SetProgress(ctx, userKey, count); err != nil {
		log.Printf("ProgressReconciler: %v", &PersistenceWriteError{Op: "progress write-back for " + userKey, Err: err})
	}
}
