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

// Package store persists extraction results in Postgres so the dashboard can
// list them without rescanning the mailbox.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jobsignal/scanner/internal/models"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Store provides CRUD operations for extraction results.
type Store struct {
	db DB
}

// New creates a result store and ensures its table exists.
func New(ctx context.Context, db DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure results schema: %w", err)
	}
	slog.Info("result store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS extraction_results (
			message_id         TEXT PRIMARY KEY,
			label              TEXT NOT NULL,
			company            TEXT,
			role               TEXT,
			interview_date     DATE,
			interview_time     TEXT,
			modality           TEXT,
			platform           TEXT,
			interview_type     TEXT,
			interviewer        TEXT,
			overall_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			field_confidence   JSONB NOT NULL DEFAULT '{}',
			priority           TEXT NOT NULL DEFAULT 'low',
			synthetic          BOOLEAN NOT NULL DEFAULT FALSE,
			created_at         TIMESTAMPTZ DEFAULT NOW(),
			updated_at         TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_results_label ON extraction_results(label);
		CREATE INDEX IF NOT EXISTS idx_results_updated ON extraction_results(updated_at DESC);

		CREATE TABLE IF NOT EXISTS applications (
			company_key     TEXT NOT NULL,
			role_key        TEXT NOT NULL DEFAULT '',
			company         TEXT NOT NULL,
			role            TEXT,
			status          TEXT NOT NULL,
			status_rank     INTEGER NOT NULL,
			last_message_id TEXT NOT NULL,
			created_at      TIMESTAMPTZ DEFAULT NOW(),
			updated_at      TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (company_key, role_key)
		);
	`)
	return err
}

// Application statuses, in the order an application moves through them.
const (
	StatusApplied            = "applied"
	StatusUnderReview        = "under_review"
	StatusInterviewScheduled = "interview_scheduled"
	StatusRejected           = "rejected"
	StatusOffer              = "offer"
)

var statusRank = map[string]int{
	StatusApplied:            1,
	StatusUnderReview:        2,
	StatusInterviewScheduled: 3,
	StatusRejected:           4,
	StatusOffer:              5,
}

// ApplicationStatus maps a label to the application status it implies, or ""
// when the label says nothing about an application.
func ApplicationStatus(l models.Label) string {
	switch l {
	case models.LabelApplicationConfirmation:
		return StatusApplied
	case models.LabelRecruiterOutreach:
		return StatusUnderReview
	case models.LabelInterviewInvite:
		return StatusInterviewScheduled
	case models.LabelRejection:
		return StatusRejected
	case models.LabelOffer:
		return StatusOffer
	}
	return ""
}

// Upsert inserts or replaces the result for a message, then rolls it up into
// the application it belongs to.
func (s *Store) Upsert(ctx context.Context, r models.ExtractionResult) error {
	fc, err := json.Marshal(r.FieldConfidence)
	if err != nil {
		return fmt.Errorf("marshal field confidence: %w", err)
	}

	f := r.Fields
	_, err = s.db.Exec(ctx, `
		INSERT INTO extraction_results
			(message_id, label, company, role, interview_date, interview_time,
			 modality, platform, interview_type, interviewer,
			 overall_confidence, field_confidence, priority, synthetic)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (message_id) DO UPDATE SET
			label              = EXCLUDED.label,
			company            = EXCLUDED.company,
			role               = EXCLUDED.role,
			interview_date     = EXCLUDED.interview_date,
			interview_time     = EXCLUDED.interview_time,
			modality           = EXCLUDED.modality,
			platform           = EXCLUDED.platform,
			interview_type     = EXCLUDED.interview_type,
			interviewer        = EXCLUDED.interviewer,
			overall_confidence = EXCLUDED.overall_confidence,
			field_confidence   = EXCLUDED.field_confidence,
			priority           = EXCLUDED.priority,
			synthetic          = EXCLUDED.synthetic,
			updated_at         = NOW()
	`, r.MessageID, string(r.Label), f.Company, f.Role, dateArg(f.InterviewDate), clockArg(f.InterviewTime),
		modalityArg(f.Modality), f.Platform, f.InterviewType, f.Interviewer,
		r.OverallConfidence, fc, string(r.Priority), r.Synthetic)
	if err != nil {
		return fmt.Errorf("upsert result %s: %w", r.MessageID, err)
	}
	return s.rollup(ctx, r)
}

// rollup records r against its application, keyed by company and role. The
// status only ever moves forward. Synthetic results and results without a
// company are not tracked.
func (s *Store) rollup(ctx context.Context, r models.ExtractionResult) error {
	status := ApplicationStatus(r.Label)
	company := r.Fields.Company
	if status == "" || r.Synthetic || company == nil || strings.TrimSpace(*company) == "" {
		return nil
	}
	roleKey := ""
	if r.Fields.Role != nil {
		roleKey = strings.ToLower(strings.TrimSpace(*r.Fields.Role))
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO applications
			(company_key, role_key, company, role, status, status_rank, last_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_key, role_key) DO UPDATE SET
			status          = EXCLUDED.status,
			status_rank     = EXCLUDED.status_rank,
			last_message_id = EXCLUDED.last_message_id,
			updated_at      = NOW()
		WHERE applications.status_rank < EXCLUDED.status_rank
	`, strings.ToLower(strings.TrimSpace(*company)), roleKey, *company, r.Fields.Role,
		status, statusRank[status], r.MessageID)
	if err != nil {
		return fmt.Errorf("update application for %s: %w", r.MessageID, err)
	}
	return nil
}

const selectColumns = `
	SELECT message_id, label, company, role, interview_date, interview_time,
	       modality, platform, interview_type, interviewer,
	       overall_confidence, field_confidence, priority, synthetic
	FROM extraction_results`

// Get retrieves the result for a message, or nil if none is stored.
func (s *Store) Get(ctx context.Context, messageID string) (*models.ExtractionResult, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE message_id = $1`, messageID)
	r, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result %s: %w", messageID, err)
	}
	return r, nil
}

// ListRecent returns up to limit results, most recently updated first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.ExtractionResult, error) {
	rows, err := s.db.Query(ctx, selectColumns+` ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()
	return collectResults(rows)
}

// DeleteSynthetic removes fallback results, typically once a real mailbox
// has been connected. It returns the number of rows removed.
func (s *Store) DeleteSynthetic(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM extraction_results WHERE synthetic = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("delete synthetic results: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.In(time.UTC)
}

func clockArg(c *models.Clock) any {
	if c == nil {
		return nil
	}
	return c.String()
}

func modalityArg(m *models.Modality) any {
	if m == nil {
		return nil
	}
	return string(*m)
}

// scanResult scans a single row into an ExtractionResult.
func scanResult(row pgx.Row) (*models.ExtractionResult, error) {
	var (
		r                                    models.ExtractionResult
		label, priority                      string
		company, role, clock, modality       pgtype.Text
		platform, interviewType, interviewer pgtype.Text
		date                                 pgtype.Date
		fieldConfidence                      []byte
	)
	if err := row.Scan(
		&r.MessageID, &label, &company, &role, &date, &clock,
		&modality, &platform, &interviewType, &interviewer,
		&r.OverallConfidence, &fieldConfidence, &priority, &r.Synthetic,
	); err != nil {
		return nil, err
	}

	r.Label = models.Label(label)
	r.Priority = models.Priority(priority)
	r.Fields.Company = textPtr(company)
	r.Fields.Role = textPtr(role)
	r.Fields.Platform = textPtr(platform)
	r.Fields.InterviewType = textPtr(interviewType)
	r.Fields.Interviewer = textPtr(interviewer)

	if modality.Valid {
		m := models.Modality(modality.String)
		r.Fields.Modality = &m
	}
	if date.Valid {
		d := models.DateOf(date.Time)
		r.Fields.InterviewDate = &d
	}
	if clock.Valid {
		var c models.Clock
		if err := c.UnmarshalText([]byte(clock.String)); err != nil {
			return nil, err
		}
		r.Fields.InterviewTime = &c
	}
	if len(fieldConfidence) > 0 {
		if err := json.Unmarshal(fieldConfidence, &r.FieldConfidence); err != nil {
			return nil, fmt.Errorf("decode field confidence: %w", err)
		}
	}
	return &r, nil
}

// collectResults scans multiple rows into a slice of results.
func collectResults(rows pgx.Rows) ([]models.ExtractionResult, error) {
	var results []models.ExtractionResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
