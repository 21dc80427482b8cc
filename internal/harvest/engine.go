package harvest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leadgrid/harvester/internal/metrics"
)

// Engine drives discovered URLs through their lifecycle: claim, fetch,
// extract, persist, finalize. One engine instance processes its batch
// strictly sequentially; the PROCESSING status is the cross-instance claim.
type Engine struct {
	store   Store
	factory FetcherFactory
	clock   Clock
	logger  *zap.Logger
	runID   string
}

// NewEngine constructs an Engine. The fetcher is not opened here; browser
// startup is deferred until a non-empty batch exists.
func NewEngine(store Store, factory FetcherFactory, clock Clock, runID string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		factory: factory,
		clock:   clock,
		logger:  logger,
		runID:   runID,
	}
}

// Run processes up to limit pending URLs (limit <= 0 means all) and returns
// run statistics. A listing failure aborts before the browser starts; a
// browser startup failure aborts before any URL is locked. Per-URL failures
// never abort the batch.
func (e *Engine) Run(ctx context.Context, limit int) (Stats, error) {
	start := e.clock.Now()
	stats := Stats{RunID: e.runID}

	urls, err := e.store.FetchPending(ctx, limit)
	if err != nil {
		return stats, fmt.Errorf("list pending urls: %w", err)
	}
	if len(urls) == 0 {
		e.logger.Info("No discovered URLs to process", zap.String("run_id", e.runID))
		stats.Elapsed = e.clock.Now().Sub(start)
		return stats, nil
	}
	e.logger.Info("Processing discovered URLs",
		zap.String("run_id", e.runID),
		zap.Int("count", len(urls)),
	)

	fetcher, err := e.factory.Open(ctx)
	if err != nil {
		return stats, fmt.Errorf("open browser session: %w", err)
	}
	defer fetcher.Close()

	for i, u := range urls {
		e.logger.Info("Processing URL",
			zap.Int("index", i+1),
			zap.Int("total", len(urls)),
			zap.String("url", u.URL),
			zap.String("type", string(u.Type)),
			zap.String("place_id", u.PlaceID),
		)
		ok, saved := e.processOne(ctx, fetcher, u)
		stats.Processed++
		stats.EmailsSaved += saved
		if ok {
			stats.Succeeded++
			metrics.URLProcessed("done")
		} else {
			stats.Failed++
			metrics.URLProcessed("failed")
		}
	}

	stats.Elapsed = e.clock.Now().Sub(start)
	metrics.RunDuration(stats.Elapsed)
	e.logger.Info("Run complete",
		zap.String("run_id", e.runID),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("emails_saved", stats.EmailsSaved),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}

// processOne runs the full lifecycle for a single URL. It reports whether
// the URL finalized DONE and how many emails were persisted.
func (e *Engine) processOne(ctx context.Context, fetcher Fetcher, u DiscoveredURL) (bool, int) {
	strat, err := strategyFor(u.Type)
	if err != nil {
		// An unknown type is claimable but never actionable.
		if lockErr := e.store.Lock(ctx, u.ID); lockErr != nil {
			e.logger.Warn("Lock failed, skipping URL", zap.Int64("id", u.ID), zap.Error(lockErr))
			return false, 0
		}
		e.logger.Warn("No strategy for URL", zap.Int64("id", u.ID), zap.Error(err))
		e.finalize(ctx, u.ID, StatusFailed)
		return false, 0
	}

	if err := e.store.Lock(ctx, u.ID); err != nil {
		// Known recovery gap: a row stuck PROCESSING after a crash or a
		// failed claim is requeued by an operator, not by this engine.
		e.logger.Warn("Lock failed, skipping URL", zap.Int64("id", u.ID), zap.Error(err))
		return false, 0
	}

	outcome := e.fetchExtract(ctx, fetcher, u, strat)
	if !outcome.Found() {
		if outcome.Err != nil {
			e.logger.Warn("Fetch failed", zap.String("url", u.URL), zap.Error(outcome.Err))
		} else {
			e.logger.Info("No emails found", zap.String("url", u.URL))
		}
		e.finalize(ctx, u.ID, StatusFailed)
		return false, 0
	}

	saved := 0
	for _, email := range outcome.Emails {
		if err := e.store.SaveEmail(ctx, u.PlaceID, email, strat.tag); err != nil {
			// Partial persistence failure does not change the URL's
			// terminal status and is not retried within the run.
			e.logger.Warn("Save email failed",
				zap.String("place_id", u.PlaceID),
				zap.String("email", email),
				zap.Error(err),
			)
			continue
		}
		saved++
		metrics.EmailSaved(strat.tag)
	}
	e.logger.Info("Emails saved",
		zap.String("url", u.URL),
		zap.Int("found", len(outcome.Emails)),
		zap.Int("saved", saved),
	)
	e.finalize(ctx, u.ID, StatusDone)
	return true, saved
}

// fetchExtract never returns a panic or error to the batch loop; a hostile
// page costs one URL, not the run.
func (e *Engine) fetchExtract(ctx context.Context, fetcher Fetcher, u DiscoveredURL, strat strategy) Outcome {
	page, err := fetcher.Fetch(ctx, FetchRequest{URL: u.URL, Type: u.Type})
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Emails: strat.extract(page, u.URL)}
}

func (e *Engine) finalize(ctx context.Context, id int64, status URLStatus) {
	if err := e.store.Finalize(ctx, id, status); err != nil {
		e.logger.Error("Finalize failed",
			zap.Int64("id", id),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}
