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

// Package engine is the single entry point for turning raw emails into
// extraction results. It runs every message through normalize, classify,
// extract and score on a bounded worker pool, and substitutes the synthetic
// fallback batch when it is given no messages.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobsignal/scanner/internal/classify"
	"github.com/jobsignal/scanner/internal/confidence"
	"github.com/jobsignal/scanner/internal/extract"
	"github.com/jobsignal/scanner/internal/fallback"
	"github.com/jobsignal/scanner/internal/models"
	"github.com/jobsignal/scanner/internal/normalize"
	"github.com/jobsignal/scanner/internal/rules"
)

// ErrMalformedInput marks a message that cannot be processed. Such messages
// are degraded to unrelated rather than failing the batch.
var ErrMalformedInput = errors.New("malformed input")

// DefaultMaxBodyBytes bounds the body size accepted for matching.
const DefaultMaxBodyBytes = 1 << 20

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	// Workers bounds concurrent message processing. Defaults to the CPU count.
	Workers int
	// MaxBodyBytes rejects larger bodies as malformed.
	MaxBodyBytes int
	// Now anchors the fallback batch. Defaults to time.Now.
	Now func() time.Time
}

// Engine processes batches of raw messages. It holds only read-only state
// and is safe for concurrent use.
type Engine struct {
	rules      *rules.Set
	classifier *classify.Classifier
	extractor  *extract.Extractor
	scorer     *confidence.Scorer
	fallback   *fallback.Generator

	workers      int
	maxBodyBytes int

	// observe, when set, is called on every stage transition.
	observe func(id string, s Stage)
}

// New builds an Engine whose stages share rs.
func New(rs *rules.Set, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Engine{
		rules:        rs,
		classifier:   classify.New(rs),
		extractor:    extract.New(rs),
		scorer:       confidence.New(rs.ScoreCeiling()),
		fallback:     fallback.New(opts.Now),
		workers:      opts.Workers,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Scan returns one result per message, in input order. A nil or empty batch
// is replaced by the synthetic fallback batch, whose results are marked
// synthetic. Scan never fails as a whole: a message that cannot be processed
// yields an unrelated result with zero confidence.
func (e *Engine) Scan(msgs []models.RawMessage) []models.ExtractionResult {
	synthetic := false
	if len(msgs) == 0 {
		msgs = e.fallback.Messages()
		synthetic = true
	}

	results := make([]models.ExtractionResult, len(msgs))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range msgs {
		g.Go(func() error {
			r := e.process(msgs[i])
			r.Synthetic = synthetic
			results[i] = r
			return nil
		})
	}
	// Workers never return errors; failures are folded into the result.
	_ = g.Wait()

	return results
}

// Process runs a single message through the pipeline.
func (e *Engine) Process(msg models.RawMessage) models.ExtractionResult {
	return e.process(msg)
}

func (e *Engine) process(msg models.RawMessage) (res models.ExtractionResult) {
	t := &tracker{id: msg.ID, observe: e.observe}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("message processing panicked, degrading to unrelated",
				"message_id", msg.ID,
				"stage", t.stage.String(),
				"panic", fmt.Sprint(r),
			)
			res = e.degraded(msg.ID)
		}
	}()

	if err := e.validate(msg); err != nil {
		slog.Warn("malformed message, degrading to unrelated",
			"message_id", msg.ID,
			"stage", t.stage.String(),
			"error", err,
		)
		return e.degraded(msg.ID)
	}

	t.advance(StageNormalizing)
	norm := normalize.Message(msg)

	t.advance(StageClassifying)
	cls := e.classifier.Classify(norm)

	t.advance(StageExtracting)
	ext := e.extractor.Extract(norm, msg.ReceivedAt, extract.Sender{
		Address: msg.SenderAddress,
		Name:    msg.SenderName,
	}, cls.Label)

	t.advance(StageScoring)
	overall, fieldConf := e.scorer.Score(cls.Label, cls.Score, ext.Confidence)
	priority := models.PriorityLow
	if cls.Label != models.LabelUnrelated {
		priority = e.rules.Priority(norm.CleanSubjectLower + "\n" + norm.CleanBodyLower)
	}

	t.advance(StageDone)
	slog.Debug("message scanned",
		"message_id", msg.ID,
		"label", cls.Label,
		"score", cls.Score,
		"confidence", overall,
	)

	return models.ExtractionResult{
		MessageID:         msg.ID,
		Label:             cls.Label,
		Fields:            ext.Fields,
		OverallConfidence: overall,
		FieldConfidence:   fieldConf,
		Priority:          priority,
	}
}

// validate rejects content the matchers should not see.
func (e *Engine) validate(msg models.RawMessage) error {
	if strings.ContainsRune(msg.Subject, 0) || strings.ContainsRune(msg.Body, 0) {
		return fmt.Errorf("message %s contains NUL bytes: %w", msg.ID, ErrMalformedInput)
	}
	if len(msg.Body) > e.maxBodyBytes {
		return fmt.Errorf("message %s body is %d bytes, limit %d: %w", msg.ID, len(msg.Body), e.maxBodyBytes, ErrMalformedInput)
	}
	return nil
}

func (e *Engine) degraded(id string) models.ExtractionResult {
	_, fields := e.scorer.Score(models.LabelUnrelated, 0, nil)
	return models.ExtractionResult{
		MessageID:       id,
		Label:           models.LabelUnrelated,
		FieldConfidence: fields,
		Priority:        models.PriorityLow,
	}
}
