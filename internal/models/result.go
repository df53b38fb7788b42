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

package models

import (
	"fmt"
	"time"
)

// Label is a recruiting-lifecycle category. A message has exactly one.
type Label string

const (
	LabelInterviewInvite         Label = "interview_invite"
	LabelOffer                   Label = "offer"
	LabelRejection               Label = "rejection"
	LabelApplicationConfirmation Label = "application_confirmation"
	LabelRecruiterOutreach       Label = "recruiter_outreach"
	LabelUnrelated               Label = "unrelated"
)

// LabelPriority is the tie-break order used when two labels score equally,
// most actionable first.
var LabelPriority = []Label{
	LabelInterviewInvite,
	LabelOffer,
	LabelRejection,
	LabelApplicationConfirmation,
	LabelRecruiterOutreach,
	LabelUnrelated,
}

// Valid reports whether l is part of the taxonomy.
func (l Label) Valid() bool {
	for _, known := range LabelPriority {
		if l == known {
			return true
		}
	}
	return false
}

// Modality is the medium of a scheduled interview.
type Modality string

const (
	ModalityPhone       Modality = "phone"
	ModalityVideo       Modality = "video"
	ModalityOnsite      Modality = "onsite"
	ModalityUnspecified Modality = "unspecified"
)

// Priority is the urgency of a recruiting signal.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Field names an extracted field. Used as the key of FieldConfidence.
type Field string

const (
	FieldCompany       Field = "company"
	FieldRole          Field = "role"
	FieldInterviewDate Field = "interview_date"
	FieldInterviewTime Field = "interview_time"
	FieldModality      Field = "modality"
	FieldPlatform      Field = "platform"
	FieldInterviewType Field = "interview_type"
	FieldInterviewer   Field = "interviewer"
)

// CoreFields are the fields that count towards extraction completeness.
var CoreFields = []Field{
	FieldCompany,
	FieldRole,
	FieldInterviewDate,
	FieldInterviewTime,
	FieldModality,
}

// AllFields lists every field reported in FieldConfidence.
var AllFields = []Field{
	FieldCompany,
	FieldRole,
	FieldInterviewDate,
	FieldInterviewTime,
	FieldModality,
	FieldPlatform,
	FieldInterviewType,
	FieldInterviewer,
}

// FieldConfidence maps a field to a reliability score in [0, 1].
type FieldConfidence map[Field]float64

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(time.DateOnly, string(b))
	if err != nil {
		return fmt.Errorf("parse date %q: %w", string(b), err)
	}
	*d = DateOf(t)
	return nil
}

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText encodes c as HH:MM.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes an HH:MM time of day.
func (c *Clock) UnmarshalText(b []byte) error {
	t, err := time.Parse("15:04", string(b))
	if err != nil {
		return fmt.Errorf("parse time of day %q: %w", string(b), err)
	}
	c.Hour, c.Minute = t.Hour(), t.Minute()
	return nil
}

// ExtractedFields holds the structured details pulled from a message. Every
// field is independently optional; nil means "not found".
type ExtractedFields struct {
	Company       *string   `json:"company"`
	Role          *string   `json:"role"`
	InterviewDate *Date     `json:"interview_date"`
	InterviewTime *Clock    `json:"interview_time"`
	Modality      *Modality `json:"modality"`
	Platform      *string   `json:"platform"`
	InterviewType *string   `json:"interview_type"`
	Interviewer   *string   `json:"interviewer"`
}

// Has reports whether field f is present.
func (f ExtractedFields) Has(field Field) bool {
	switch field {
	case FieldCompany:
		return f.Company != nil
	case FieldRole:
		return f.Role != nil
	case FieldInterviewDate:
		return f.InterviewDate != nil
	case FieldInterviewTime:
		return f.InterviewTime != nil
	case FieldModality:
		return f.Modality != nil
	case FieldPlatform:
		return f.Platform != nil
	case FieldInterviewType:
		return f.InterviewType != nil
	case FieldInterviewer:
		return f.Interviewer != nil
	default:
		return false
	}
}

// Empty reports whether no field is present.
func (f ExtractedFields) Empty() bool {
	for _, field := range AllFields {
		if f.Has(field) {
			return false
		}
	}
	return true
}

// ExtractionResult is the unit returned to collaborators, one per RawMessage.
//
// The JSON form keeps every key, including null fields, so clients see a
// stable schema.
type ExtractionResult struct {
	MessageID         string          `json:"message_id"`
	Label             Label           `json:"label"`
	Fields            ExtractedFields `json:"fields"`
	OverallConfidence float64         `json:"overall_confidence"`
	FieldConfidence   FieldConfidence `json:"field_confidence"`
	Priority          Priority        `json:"priority"`
	Synthetic         bool            `json:"synthetic"`
}
