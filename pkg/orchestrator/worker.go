package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/ratelimit"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// worker drives a single session's region×service scan matrix. It is the
// only writer of its session's progress and inventory, per spec.md §5.
type worker struct {
	manager        *Manager
	session        *Session
	regions        []string
	services       []string
	accountID      string
	subscriptionID string
	credential     any
	limiter        *ratelimit.Limiter
	onProgress     inventory.ProgressFunc
	logger         *slog.Logger
}

func (w *worker) run(ctx context.Context) {
	startedAt := w.session.StartedAt
	progress := inventory.Progress{
		Status:        inventory.StatusInProgress,
		TotalRegions:  len(w.regions),
		TotalServices: len(w.services),
		StartedAt:     startedAt,
		UpdatedAt:     time.Now(),
	}
	w.publish(progress)

	var allResources []inventory.Resource
	var allErrors []inventory.ScanError
	var apiCallCount int64

	primaryRegion := ""
	if len(w.regions) > 0 {
		primaryRegion = w.regions[0]
	}

	for _, region := range w.regions {
		if cancelErr := ctx.Err(); cancelErr != nil {
			w.failCancelled(progress, allErrors, cancelErr)
			return
		}
		progress.CurrentRegion = region

		for _, name := range w.services {
			if cancelErr := ctx.Err(); cancelErr != nil {
				w.failCancelled(progress, allErrors, cancelErr)
				return
			}
			progress.CurrentService = name

			sc, ok := w.manager.registry.Get(name)
			if !ok {
				continue
			}
			if sc.IsGlobal() && region != primaryRegion {
				continue
			}

			scanCtx := &scanner.Context{
				Context:     ctx,
				Region:      region,
				AccountID:   w.accountID,
				Credentials: w.credential,
				RateLimiter: w.limiter,
				Logger:      w.logger.With("service", name, "region", region),
			}

			resources, errs := w.safeScan(sc, scanCtx)
			allResources = append(allResources, resources...)
			allErrors = append(allErrors, errs...)

			progress.ServicesScanned++
			progress.ResourcesFound = len(allResources)
			progress.Errors = allErrors
			progress.UpdatedAt = time.Now()
			w.publish(progress)
		}

		progress.RegionsScanned++
		progress.UpdatedAt = time.Now()
		w.publish(progress)
	}

	deduped := inventory.Dedup(allResources)
	summary := inventory.BuildSummary(deduped)
	now := time.Now()
	apiCallCount = w.limiter.Stats().TotalRequests

	inv := &inventory.Inventory{
		ID:             w.session.ID,
		Timestamp:      now,
		Provider:       w.session.Config.Provider,
		AccountID:      w.accountID,
		SubscriptionID: w.subscriptionID,
		Regions:        w.regions,
		Summary:        summary,
		Resources:      deduped,
		Metadata: inventory.Metadata{
			ScanDuration: now.Sub(startedAt),
			APICallCount: apiCallCount,
			StartedAt:    startedAt,
			CompletedAt:  now,
			Errors:       allErrors,
		},
	}
	w.session.inv.Store(inv)

	progress.Status = inventory.StatusCompleted
	progress.ResourcesFound = len(deduped)
	progress.UpdatedAt = now
	w.publish(progress)
}

// safeScan wraps a scanner invocation so a panicking scanner can never take
// down the worker: the panic becomes a single ScanError with
// operation="scan", per spec.md §7 rule 9 and §9's error-as-value
// discipline.
func (w *worker) safeScan(sc scanner.ServiceScanner, scanCtx *scanner.Context) (resources []inventory.Resource, errs []inventory.ScanError) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, inventory.ScanError{
				Service:   sc.ServiceName(),
				Region:    scanCtx.Region,
				Operation: "scan",
				Message:   fmt.Sprintf("panic: %v", r),
				Timestamp: time.Now(),
			})
		}
	}()
	return sc.Scan(scanCtx)
}

func (w *worker) failCancelled(progress inventory.Progress, errs []inventory.ScanError, cancelErr error) {
	message := "cancelled by user"
	if errors.Is(cancelErr, context.DeadlineExceeded) {
		message = "discovery timed out"
	}
	errs = append(errs, inventory.ScanError{
		Operation: "cancel",
		Message:   message,
		Timestamp: time.Now(),
	})
	progress.Status = inventory.StatusFailed
	progress.Errors = errs
	progress.UpdatedAt = time.Now()
	w.publish(progress)
}

func (w *worker) publish(p inventory.Progress) {
	w.session.publishProgress(p)
	if w.onProgress != nil {
		w.onProgress(p.Clone())
	}
}
