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

package confidence

import (
	"testing"

	"github.com/jobsignal/scanner/internal/models"
)

func TestScore_Formula(t *testing.T) {
	s := New(10)

	tests := []struct {
		name  string
		label models.Label
		raw   float64
		found models.FieldConfidence
		want  float64
	}{
		{"no fields", models.LabelApplicationConfirmation, 5, nil, 0.25},
		{"raw capped at ceiling", models.LabelOffer, 40, nil, 0.5},
		{"all core fields", models.LabelInterviewInvite, 10, models.FieldConfidence{
			models.FieldCompany: 1, models.FieldRole: 1, models.FieldInterviewDate: 1,
			models.FieldInterviewTime: 1, models.FieldModality: 1,
		}, 1},
		{"rounded", models.LabelInterviewInvite, 3, models.FieldConfidence{models.FieldCompany: 0.85}, 0.235},
		{"supplementary fields do not count", models.LabelInterviewInvite, 0, models.FieldConfidence{
			models.FieldPlatform: 0.9, models.FieldInterviewer: 0.6,
		}, 0},
		{"unrelated is zero", models.LabelUnrelated, 10, models.FieldConfidence{models.FieldCompany: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := s.Score(tt.label, tt.raw, tt.found)
			if got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_FieldMapComplete(t *testing.T) {
	s := New(10)
	_, fields := s.Score(models.LabelInterviewInvite, 6, models.FieldConfidence{models.FieldRole: 0.9, models.FieldModality: 1.7})

	if len(fields) != len(models.AllFields) {
		t.Fatalf("expected %d entries, got %d", len(models.AllFields), len(fields))
	}
	if fields[models.FieldRole] != 0.9 {
		t.Errorf("role = %v, want 0.9", fields[models.FieldRole])
	}
	if fields[models.FieldModality] != 1 {
		t.Errorf("modality = %v, want clamped to 1", fields[models.FieldModality])
	}
	if fields[models.FieldCompany] != 0 {
		t.Errorf("company = %v, want 0", fields[models.FieldCompany])
	}

	_, unrelated := s.Score(models.LabelUnrelated, 6, models.FieldConfidence{models.FieldRole: 0.9})
	for f, v := range unrelated {
		if v != 0 {
			t.Errorf("unrelated %s = %v, want 0", f, v)
		}
	}
}

func TestScore_MonotonicInFields(t *testing.T) {
	s := New(12)
	found := models.FieldConfidence{}
	prev, _ := s.Score(models.LabelInterviewInvite, 5, found)

	for _, f := range models.CoreFields {
		found[f] = 0.2
		next, _ := s.Score(models.LabelInterviewInvite, 5, found)
		if next <= prev {
			t.Errorf("adding %s: %v did not increase from %v", f, next, prev)
		}
		prev = next
	}
}

func TestScore_ClassificationHalfBounded(t *testing.T) {
	s := New(12)
	got, _ := s.Score(models.LabelRejection, 1e6, nil)
	if got > 0.5 {
		t.Errorf("zero-field score %v exceeds 0.5", got)
	}
}
