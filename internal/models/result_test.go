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
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestExtractedFields_JSON(t *testing.T) {
	company := "Acme Corp"
	modality := ModalityVideo
	f := ExtractedFields{
		Company:       &company,
		InterviewDate: &Date{Year: 2026, Month: time.March, Day: 9},
		InterviewTime: &Clock{Hour: 14, Minute: 5},
		Modality:      &modality,
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)

	for _, want := range []string{
		`"company":"Acme Corp"`,
		`"role":null`,
		`"interview_date":"2026-03-09"`,
		`"interview_time":"14:05"`,
		`"modality":"video"`,
		`"interviewer":null`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON %s missing %s", got, want)
		}
	}

	var back ExtractedFields
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.InterviewDate == nil || *back.InterviewDate != *f.InterviewDate {
		t.Errorf("InterviewDate = %v, want %v", back.InterviewDate, f.InterviewDate)
	}
	if back.Role != nil {
		t.Errorf("Role = %v, want nil", back.Role)
	}
}

func TestDate_UnmarshalTextRejectsGarbage(t *testing.T) {
	var d Date
	if err := d.UnmarshalText([]byte("2026-02-30")); err == nil {
		t.Error("expected error for impossible date")
	}
	var c Clock
	if err := c.UnmarshalText([]byte("25:00")); err == nil {
		t.Error("expected error for impossible time")
	}
}

func TestExtractedFields_HasAndEmpty(t *testing.T) {
	var f ExtractedFields
	if !f.Empty() {
		t.Error("zero value should be empty")
	}

	role := "Engineer"
	f.Role = &role
	if f.Empty() || !f.Has(FieldRole) || f.Has(FieldCompany) {
		t.Errorf("Has/Empty wrong for %+v", f)
	}
	if f.Has("salary") {
		t.Error("unknown field reported present")
	}
}

func TestLabel_Valid(t *testing.T) {
	for _, l := range LabelPriority {
		if !l.Valid() {
			t.Errorf("%s should be valid", l)
		}
	}
	if Label("ghosted").Valid() {
		t.Error("unknown label reported valid")
	}
}
