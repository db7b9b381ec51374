package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// Reconciler is the background sweep that resolves records left in the
// uploading state past the staleness deadline, forcing them to failed with
// the same compare-and-swap used by a live confirm. Because the swap is
// atomic, any number of reconciler instances may run concurrently with each
// other and with client confirms: duplicate sweep actions are no-ops and a
// late client confirm that wins the race is left alone.
//
// The sweep never contacts the object store. "Failed" means the upload is
// not trusted, not that bytes are absent; orphaned objects are reclaimed by
// a separate purge job.
type Reconciler struct {
	repo       repository.FileRepository
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	now        func() time.Time

	cancel context.CancelFunc
	done   chan struct{}

	sweepsTotal     prometheus.Counter
	reconciledTotal prometheus.Counter
	errorsTotal     prometheus.Counter
}

// ReconcileResult is the outcome of a single sweep.
type ReconcileResult struct {
	// Scanned is the number of stale candidates loaded.
	Scanned int
	// Reconciled is the number of records actually swapped to failed.
	Reconciled int
	// Errors is the number of records that could not be processed.
	Errors int
}

// NewReconciler constructs a reconciler and registers its metrics.
func NewReconciler(repo repository.FileRepository, interval, staleAfter time.Duration, batchSize int, reg prometheus.Registerer) (*Reconciler, error) {
	r := &Reconciler{
		repo:       repo,
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		now:        time.Now,
		sweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filevault_reconciler_sweeps_total",
			Help: "Total number of reconciler sweeps executed.",
		}),
		reconciledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filevault_reconciler_reconciled_total",
			Help: "Total number of stale uploads forced to failed.",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filevault_reconciler_errors_total",
			Help: "Total number of errors during reconciler sweeps.",
		}),
	}
	for _, c := range []prometheus.Counter{r.sweepsTotal, r.reconciledTotal, r.errorsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Start launches the periodic sweep goroutine. It returns immediately.
func (r *Reconciler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(runCtx)

	logReconciler(map[string]any{
		"event":       "reconciler_started",
		"interval":    r.interval.String(),
		"stale_after": r.staleAfter.String(),
	})
}

// Stop cancels the sweep goroutine and waits for it to drain.
func (r *Reconciler) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	logReconciler(map[string]any{"event": "reconciler_stopped"})
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := r.RunOnce(ctx)
			if err != nil {
				r.errorsTotal.Inc()
				logReconciler(map[string]any{
					"event": "reconcile_sweep_failed",
					"level": "error",
					"error": err.Error(),
				})
				continue
			}
			if res.Reconciled > 0 || res.Errors > 0 {
				logReconciler(map[string]any{
					"event":      "reconcile_sweep",
					"scanned":    res.Scanned,
					"reconciled": res.Reconciled,
					"errors":     res.Errors,
				})
			}
		}
	}
}

// RunOnce performs a single sweep: load stale uploading records and
// compare-and-swap each to failed. Exported so operators can trigger a sweep
// out of band and so tests can drive it without the ticker.
func (r *Reconciler) RunOnce(ctx context.Context) (ReconcileResult, error) {
	r.sweepsTotal.Inc()

	cutoff := r.now().UTC().Add(-r.staleAfter)
	stale, err := r.repo.FindStaleUploading(ctx, cutoff, r.batchSize)
	if err != nil {
		return ReconcileResult{}, err
	}

	res := ReconcileResult{Scanned: len(stale)}
	for _, rec := range stale {
		swapped, err := r.repo.UpdateStatus(ctx, rec.ID, rec.OwnerID, model.StatusUploading, model.StatusFailed)
		if err != nil {
			res.Errors++
			r.errorsTotal.Inc()
			continue
		}
		// A lost swap means a client confirm or another sweep instance got
		// there first; either way the record is no longer ambiguous.
		if swapped {
			res.Reconciled++
			r.reconciledTotal.Inc()
		}
	}
	return res, nil
}

func logReconciler(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	data["component"] = "reconciler"
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	if b, err := json.Marshal(data); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
