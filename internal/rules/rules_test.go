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

package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jobsignal/scanner/internal/models"
)

func TestDefault_Compiles(t *testing.T) {
	s, err := Default().Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	labels := s.Labels()
	if len(labels) != 5 {
		t.Fatalf("expected 5 label rule-sets, got %d", len(labels))
	}
	// Stored in tie-break order.
	for i, lm := range labels {
		if lm.Label != models.LabelPriority[i] {
			t.Errorf("labels[%d] = %s, want %s", i, lm.Label, models.LabelPriority[i])
		}
		if len(lm.Matchers) == 0 {
			t.Errorf("label %s has no matchers", lm.Label)
		}
	}
}

func TestCompile_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rs *Ruleset)
	}{
		{"subject below body", func(rs *Ruleset) { rs.SubjectWeight = 0.5 }},
		{"zero body weight", func(rs *Ruleset) { rs.BodyWeight = 0 }},
		{"zero min score", func(rs *Ruleset) { rs.MinScore = 0 }},
		{"ceiling below min", func(rs *Ruleset) { rs.ScoreCeiling = 1 }},
		{"negative rollover", func(rs *Ruleset) { rs.RolloverDays = -1 }},
		{"bad regex", func(rs *Ruleset) { rs.Labels[0].Patterns[0].Expr = `(unclosed` }},
		{"zero weight", func(rs *Ruleset) { rs.Labels[0].Patterns[0].Weight = 0 }},
		{"unrelated label", func(rs *Ruleset) { rs.Labels[0].Label = models.LabelUnrelated }},
		{"unknown label", func(rs *Ruleset) { rs.Labels[0].Label = "ghosted" }},
		{"duplicate label", func(rs *Ruleset) { rs.Labels[1].Label = rs.Labels[0].Label }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := Default()
			tt.mutate(rs)
			if _, err := rs.Compile(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.Labels[0].Patterns[0].Weight = 99
	b := Default()
	if b.Labels[0].Patterns[0].Weight == 99 {
		t.Error("Default() shares state between calls")
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	yaml := `
min_score: 3
provider_domains:
  - example-ats.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if rs.MinScore != 3 {
		t.Errorf("MinScore = %v, want 3", rs.MinScore)
	}
	if rs.SubjectWeight != 2 {
		t.Errorf("SubjectWeight = %v, want default 2", rs.SubjectWeight)
	}
	if len(rs.Labels) != 5 {
		t.Errorf("expected default labels to survive, got %d", len(rs.Labels))
	}

	s, err := rs.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if !s.IsProviderDomain("jobs.example-ats.com") {
		t.Error("expected subdomain of configured provider to match")
	}
	if s.IsProviderDomain("gmail.com") {
		t.Error("expected provider list to be replaced, not appended")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadSet(t *testing.T) {
	s, err := LoadSet("")
	if err != nil {
		t.Fatalf("LoadSet(\"\") error: %v", err)
	}
	if s.MinScore() != 2 {
		t.Errorf("MinScore = %v, want default 2", s.MinScore())
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("min_score: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSet(path); err == nil {
		t.Error("expected compile error for zero min_score")
	}
}

func TestSet_Modality(t *testing.T) {
	s := MustCompileDefault()

	tests := []struct {
		text string
		want models.Modality
		ok   bool
	}{
		{"let's set up a phone screen", models.ModalityPhone, true},
		{"join the zoom link below", models.ModalityVideo, true},
		{"please come onsite to our hq", models.ModalityOnsite, true},
		{"phone screen, then a zoom call", models.ModalityPhone, true},
		{"zoomed out on the roadmap", "", false},
		{"no medium mentioned", "", false},
	}

	for _, tt := range tests {
		got, ok := s.Modality(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Modality(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSet_Priority(t *testing.T) {
	s := MustCompileDefault()

	tests := []struct {
		text string
		want models.Priority
	}{
		{"please reply asap", models.PriorityHigh},
		{"your final round is scheduled", models.PriorityHigh},
		{"can we talk next week", models.PriorityMedium},
		{"thanks for applying", models.PriorityLow},
	}

	for _, tt := range tests {
		if got := s.Priority(tt.text); got != tt.want {
			t.Errorf("Priority(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestKeywords_Count(t *testing.T) {
	kw, err := compileKeywords([]string{"system design", "scalability"})
	if err != nil {
		t.Fatal(err)
	}
	got := kw.Count("system design round: scalability, scalability and more system design")
	if got != 2 {
		t.Errorf("Count() = %d, want 2 distinct phrases", got)
	}

	var empty Keywords
	if empty.Match("anything") || empty.Count("anything") != 0 {
		t.Error("zero Keywords must match nothing")
	}
}

func TestSet_IsGenericSender(t *testing.T) {
	s := MustCompileDefault()
	if !s.IsGenericSender("Acme Recruiting Team") {
		t.Error("expected team mailbox to be generic")
	}
	if s.IsGenericSender("Sarah Chen") {
		t.Error("expected personal name not to be generic")
	}
}
