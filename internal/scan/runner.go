// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scan ties a mailbox source to the engine and the result sinks. A
// Runner fetches recent mail, scans it, and persists and publishes each new
// result, either on demand or on a fixed interval.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jobsignal/scanner/internal/engine"
	"github.com/jobsignal/scanner/internal/mailbox"
	"github.com/jobsignal/scanner/internal/models"
)

// ResultStore persists extraction results.
type ResultStore interface {
	Upsert(ctx context.Context, r models.ExtractionResult) error
	DeleteSynthetic(ctx context.Context) (int64, error)
}

// Publisher forwards results to downstream workers.
type Publisher interface {
	PublishResult(ctx context.Context, r models.ExtractionResult) (string, error)
}

// Deduper remembers which messages were already scanned.
type Deduper interface {
	IsNew(ctx context.Context, messageID string) (bool, error)
	Forget(ctx context.Context, messageID string) error
}

// Summary reports the outcome of one scan.
type Summary struct {
	Source    string                    `json:"source"`
	Synthetic bool                      `json:"synthetic"`
	Fetched   int                       `json:"fetched"`
	Skipped   int                       `json:"skipped"`
	Scanned   int                       `json:"scanned"`
	Stored    int                       `json:"stored"`
	Published int                       `json:"published"`
	Failed    int                       `json:"failed"`
	Elapsed   time.Duration             `json:"elapsed_ns"`
	Results   []models.ExtractionResult `json:"results"`
}

// Config holds dependencies for the runner. Store, Publisher and Dedup are
// optional.
type Config struct {
	Source    mailbox.Source
	Engine    *engine.Engine
	Store     ResultStore
	Publisher Publisher
	Dedup     Deduper
	Interval  time.Duration
	Lookback  time.Duration
	Now       func() time.Time
}

// Runner performs mailbox scans.
type Runner struct {
	source    mailbox.Source
	engine    *engine.Engine
	store     ResultStore
	publisher Publisher
	dedup     Deduper
	interval  time.Duration
	lookback  time.Duration
	now       func() time.Time

	// runMu serialises scans so a manual trigger cannot race the ticker.
	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a scan runner.
func NewRunner(cfg Config) *Runner {
	if cfg.Source == nil {
		cfg.Source = mailbox.Unavailable{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{
		source:    cfg.Source,
		engine:    cfg.Engine,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		dedup:     cfg.Dedup,
		interval:  cfg.Interval,
		lookback:  cfg.Lookback,
		now:       cfg.Now,
	}
}

// RunOnce scans the lookback window. When the source is unavailable or the
// mailbox is empty it scans the synthetic fallback batch instead; synthetic
// results are stored but never published. Per-message sink failures are
// counted in the summary and do not fail the run.
func (r *Runner) RunOnce(ctx context.Context) (*Summary, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	start := r.now()
	sum := &Summary{Source: r.source.Name()}

	msgs, err := r.source.Fetch(ctx, start.Add(-r.lookback))
	switch {
	case errors.Is(err, mailbox.ErrSourceUnavailable):
		slog.Warn("mailbox unavailable, scanning synthetic data",
			"source", r.source.Name(),
			"error", err,
		)
		msgs = nil
	case err != nil:
		return nil, fmt.Errorf("fetch from %s: %w", r.source.Name(), err)
	}
	sum.Fetched = len(msgs)

	if len(msgs) == 0 {
		sum.Synthetic = true
		sum.Results = r.engine.Scan(nil)
		sum.Scanned = len(sum.Results)
		for _, res := range sum.Results {
			r.persist(ctx, res, sum)
		}
		sum.Elapsed = r.now().Sub(start)
		r.logSummary(sum)
		return sum, nil
	}

	fresh := r.filterNew(ctx, msgs, sum)
	if len(fresh) == 0 {
		sum.Results = []models.ExtractionResult{}
		sum.Elapsed = r.now().Sub(start)
		r.logSummary(sum)
		return sum, nil
	}

	if r.store != nil {
		if n, err := r.store.DeleteSynthetic(ctx); err != nil {
			slog.Warn("failed to clear synthetic results", "error", err)
		} else if n > 0 {
			slog.Info("cleared synthetic results", "count", n)
		}
	}

	sum.Results = r.engine.Scan(fresh)
	sum.Scanned = len(sum.Results)
	for _, res := range sum.Results {
		if !r.persist(ctx, res, sum) {
			r.forget(ctx, res.MessageID)
			continue
		}
		if r.publisher == nil {
			continue
		}
		if _, err := r.publisher.PublishResult(ctx, res); err != nil {
			slog.Warn("publish result failed",
				"message_id", res.MessageID,
				"error", err,
			)
			sum.Failed++
			r.forget(ctx, res.MessageID)
			continue
		}
		sum.Published++
	}

	sum.Elapsed = r.now().Sub(start)
	r.logSummary(sum)
	return sum, nil
}

// filterNew drops messages the dedup filter has already seen. A dedup error
// lets the message through.
func (r *Runner) filterNew(ctx context.Context, msgs []models.RawMessage, sum *Summary) []models.RawMessage {
	if r.dedup == nil {
		return msgs
	}
	fresh := make([]models.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		isNew, err := r.dedup.IsNew(ctx, m.ID)
		if err != nil {
			slog.Warn("dedup check failed", "message_id", m.ID, "error", err)
		} else if !isNew {
			sum.Skipped++
			continue
		}
		fresh = append(fresh, m)
	}
	return fresh
}

// persist stores a result. It reports false on failure.
func (r *Runner) persist(ctx context.Context, res models.ExtractionResult, sum *Summary) bool {
	if r.store == nil {
		return true
	}
	if err := r.store.Upsert(ctx, res); err != nil {
		slog.Warn("store result failed",
			"message_id", res.MessageID,
			"synthetic", res.Synthetic,
			"error", err,
		)
		sum.Failed++
		return false
	}
	sum.Stored++
	return true
}

// forget clears the dedup mark so a failed message is retried next scan.
func (r *Runner) forget(ctx context.Context, messageID string) {
	if r.dedup == nil {
		return
	}
	if err := r.dedup.Forget(ctx, messageID); err != nil {
		slog.Warn("dedup forget failed", "message_id", messageID, "error", err)
	}
}

func (r *Runner) logSummary(sum *Summary) {
	slog.Info("scan complete",
		"source", sum.Source,
		"synthetic", sum.Synthetic,
		"fetched", sum.Fetched,
		"skipped", sum.Skipped,
		"scanned", sum.Scanned,
		"stored", sum.Stored,
		"published", sum.Published,
		"failed", sum.Failed,
		"elapsed", sum.Elapsed,
	)
}

// Start runs a scan immediately and then at the configured interval until
// Stop is called or ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		r.tick(loopCtx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				r.tick(loopCtx)
			}
		}
	}()

	slog.Info("periodic scan started",
		"source", r.source.Name(),
		"interval", r.interval,
		"lookback", r.lookback,
	)
}

func (r *Runner) tick(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
		slog.Error("periodic scan failed", "source", r.source.Name(), "error", err)
	}
}

// Stop shuts down the periodic scan loop.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
