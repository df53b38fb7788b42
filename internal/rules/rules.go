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

// Package rules holds the keyword and pattern tables that drive
// classification and extraction. A Ruleset is the editable YAML form; Compile
// turns it into an immutable Set that is built once at startup and shared
// read-only by every pipeline stage.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jobsignal/scanner/internal/models"
)

// Pattern is a weighted regular expression matched against lower-cased text.
type Pattern struct {
	Expr   string  `yaml:"pattern"`
	Weight float64 `yaml:"weight"`
}

// LabelRules is the rule-set for a single taxonomy label.
type LabelRules struct {
	Label    models.Label `yaml:"label"`
	Patterns []Pattern    `yaml:"patterns"`
}

// ModalityKeywords lists the phrases that identify each interview medium.
type ModalityKeywords struct {
	Phone  []string `yaml:"phone"`
	Video  []string `yaml:"video"`
	Onsite []string `yaml:"onsite"`
}

// PlatformRule maps a meeting platform display name to its keywords.
type PlatformRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// InterviewTypeRule scores an interview type: keywords weigh 3, clues 1.
type InterviewTypeRule struct {
	Type     string   `yaml:"type"`
	Keywords []string `yaml:"keywords"`
	Clues    []string `yaml:"clues"`
}

// PriorityKeywords lists urgency indicators. Anything else is low priority.
type PriorityKeywords struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
}

// Ruleset is the serialisable rule configuration.
type Ruleset struct {
	SubjectWeight   float64             `yaml:"subject_weight"`
	BodyWeight      float64             `yaml:"body_weight"`
	MinScore        float64             `yaml:"min_score"`
	ScoreCeiling    float64             `yaml:"score_ceiling"`
	RolloverDays    int                 `yaml:"rollover_days"`
	Labels          []LabelRules        `yaml:"labels"`
	ProviderDomains []string            `yaml:"provider_domains"`
	GenericSenders  []string            `yaml:"generic_senders"`
	Modality        ModalityKeywords    `yaml:"modality"`
	Platforms       []PlatformRule      `yaml:"platforms"`
	InterviewTypes  []InterviewTypeRule `yaml:"interview_types"`
	Priority        PriorityKeywords    `yaml:"priority"`
}

// Load reads a YAML rules file and merges it over Default. Keys absent from
// the file keep their default value; lists present in the file replace the
// default list.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}

	rs := Default()
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("parse rules YAML: %w", err)
	}
	return rs, nil
}

// LoadSet compiles the rules at path, or the built-in defaults when path is
// empty.
func LoadSet(path string) (*Set, error) {
	rs := Default()
	if path != "" {
		var err error
		if rs, err = Load(path); err != nil {
			return nil, err
		}
	}
	s, err := rs.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	return s, nil
}

// Matcher is a compiled weighted pattern.
type Matcher struct {
	Expr   string
	Re     *regexp.Regexp
	Weight float64
}

// LabelMatchers is the compiled rule-set for one label.
type LabelMatchers struct {
	Label    models.Label
	Matchers []Matcher
}

// Keywords matches any of a list of phrases on word boundaries.
type Keywords struct {
	re *regexp.Regexp
}

// Match reports whether text contains one of the phrases.
func (k Keywords) Match(text string) bool {
	return k.re != nil && k.re.MatchString(text)
}

// Count returns how many distinct phrases occur in text.
func (k Keywords) Count(text string) int {
	if k.re == nil {
		return 0
	}
	seen := make(map[string]bool)
	for _, m := range k.re.FindAllString(text, -1) {
		seen[strings.ToLower(m)] = true
	}
	return len(seen)
}

// Platform is a compiled PlatformRule.
type Platform struct {
	Name     string
	Keywords Keywords
}

// InterviewType is a compiled InterviewTypeRule.
type InterviewType struct {
	Type     string
	Keywords Keywords
	Clues    Keywords
}

// Set is the compiled, immutable rule configuration.
type Set struct {
	subjectWeight float64
	bodyWeight    float64
	minScore      float64
	scoreCeiling  float64
	rolloverDays  int

	labels          []LabelMatchers
	providerDomains []string
	genericSenders  Keywords
	phone           Keywords
	video           Keywords
	onsite          Keywords
	platforms       []Platform
	interviewTypes  []InterviewType
	highPriority    Keywords
	mediumPriority  Keywords
}

// Compile validates the ruleset and compiles every pattern.
func (rs *Ruleset) Compile() (*Set, error) {
	if rs.BodyWeight <= 0 || rs.SubjectWeight < rs.BodyWeight {
		return nil, fmt.Errorf("subject weight (%v) must be >= body weight (%v) > 0", rs.SubjectWeight, rs.BodyWeight)
	}
	if rs.MinScore <= 0 {
		return nil, fmt.Errorf("min score must be positive, got %v", rs.MinScore)
	}
	if rs.ScoreCeiling < rs.MinScore {
		return nil, fmt.Errorf("score ceiling (%v) below min score (%v)", rs.ScoreCeiling, rs.MinScore)
	}
	if rs.RolloverDays < 0 {
		return nil, fmt.Errorf("rollover days must not be negative, got %d", rs.RolloverDays)
	}

	s := &Set{
		subjectWeight: rs.SubjectWeight,
		bodyWeight:    rs.BodyWeight,
		minScore:      rs.MinScore,
		scoreCeiling:  rs.ScoreCeiling,
		rolloverDays:  rs.RolloverDays,
	}

	byLabel := make(map[models.Label]LabelMatchers, len(rs.Labels))
	for _, lr := range rs.Labels {
		if !lr.Label.Valid() || lr.Label == models.LabelUnrelated {
			return nil, fmt.Errorf("label %q cannot carry rules", lr.Label)
		}
		if _, dup := byLabel[lr.Label]; dup {
			return nil, fmt.Errorf("duplicate rules for label %q", lr.Label)
		}
		lm := LabelMatchers{Label: lr.Label}
		for _, p := range lr.Patterns {
			if p.Weight <= 0 {
				return nil, fmt.Errorf("label %s: pattern %q has non-positive weight", lr.Label, p.Expr)
			}
			re, err := regexp.Compile("(?i)" + p.Expr)
			if err != nil {
				return nil, fmt.Errorf("label %s: compile pattern %q: %w", lr.Label, p.Expr, err)
			}
			lm.Matchers = append(lm.Matchers, Matcher{Expr: p.Expr, Re: re, Weight: p.Weight})
		}
		byLabel[lr.Label] = lm
	}
	// Stored in tie-break order so callers can iterate deterministically.
	for _, label := range models.LabelPriority {
		if lm, ok := byLabel[label]; ok {
			s.labels = append(s.labels, lm)
		}
	}

	for _, d := range rs.ProviderDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			s.providerDomains = append(s.providerDomains, d)
		}
	}

	var err error
	if s.genericSenders, err = compileKeywords(rs.GenericSenders); err != nil {
		return nil, fmt.Errorf("generic senders: %w", err)
	}
	if s.phone, err = compileKeywords(rs.Modality.Phone); err != nil {
		return nil, fmt.Errorf("phone keywords: %w", err)
	}
	if s.video, err = compileKeywords(rs.Modality.Video); err != nil {
		return nil, fmt.Errorf("video keywords: %w", err)
	}
	if s.onsite, err = compileKeywords(rs.Modality.Onsite); err != nil {
		return nil, fmt.Errorf("onsite keywords: %w", err)
	}
	if s.highPriority, err = compileKeywords(rs.Priority.High); err != nil {
		return nil, fmt.Errorf("high priority keywords: %w", err)
	}
	if s.mediumPriority, err = compileKeywords(rs.Priority.Medium); err != nil {
		return nil, fmt.Errorf("medium priority keywords: %w", err)
	}

	for _, p := range rs.Platforms {
		kw, err := compileKeywords(p.Keywords)
		if err != nil {
			return nil, fmt.Errorf("platform %s: %w", p.Name, err)
		}
		s.platforms = append(s.platforms, Platform{Name: p.Name, Keywords: kw})
	}

	for _, it := range rs.InterviewTypes {
		kw, err := compileKeywords(it.Keywords)
		if err != nil {
			return nil, fmt.Errorf("interview type %s: %w", it.Type, err)
		}
		clues, err := compileKeywords(it.Clues)
		if err != nil {
			return nil, fmt.Errorf("interview type %s clues: %w", it.Type, err)
		}
		s.interviewTypes = append(s.interviewTypes, InterviewType{Type: it.Type, Keywords: kw, Clues: clues})
	}

	return s, nil
}

// MustCompileDefault compiles the built-in ruleset. The defaults are static,
// so a failure here is a programming error.
func MustCompileDefault() *Set {
	s, err := Default().Compile()
	if err != nil {
		panic(fmt.Sprintf("compile default rules: %v", err))
	}
	return s
}

func compileKeywords(words []string) (Keywords, error) {
	var alts []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			alts = append(alts, regexp.QuoteMeta(strings.ToLower(w)))
		}
	}
	if len(alts) == 0 {
		return Keywords{}, nil
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
	if err != nil {
		return Keywords{}, err
	}
	return Keywords{re: re}, nil
}

func (s *Set) SubjectWeight() float64 { return s.subjectWeight }
func (s *Set) BodyWeight() float64    { return s.bodyWeight }
func (s *Set) MinScore() float64      { return s.minScore }
func (s *Set) ScoreCeiling() float64  { return s.scoreCeiling }

// RolloverDays is how far in the past a year-less date may fall before it is
// moved to the following year.
func (s *Set) RolloverDays() int { return s.rolloverDays }

// Labels returns the compiled rule-sets in tie-break order.
func (s *Set) Labels() []LabelMatchers {
	out := make([]LabelMatchers, len(s.labels))
	copy(out, s.labels)
	return out
}

// IsProviderDomain reports whether domain belongs to a mail or applicant
// tracking provider rather than to an employer.
func (s *Set) IsProviderDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, d := range s.providerDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// IsGenericSender reports whether a display name belongs to a shared mailbox.
func (s *Set) IsGenericSender(name string) bool {
	return s.genericSenders.Match(name)
}

// Modality returns the first modality whose keywords occur in text, checked
// phone, video, onsite.
func (s *Set) Modality(text string) (models.Modality, bool) {
	switch {
	case s.phone.Match(text):
		return models.ModalityPhone, true
	case s.video.Match(text):
		return models.ModalityVideo, true
	case s.onsite.Match(text):
		return models.ModalityOnsite, true
	}
	return "", false
}

// Platforms returns the compiled platform rules in priority order.
func (s *Set) Platforms() []Platform {
	out := make([]Platform, len(s.platforms))
	copy(out, s.platforms)
	return out
}

// InterviewTypes returns the compiled interview type rules in tie-break order.
func (s *Set) InterviewTypes() []InterviewType {
	out := make([]InterviewType, len(s.interviewTypes))
	copy(out, s.interviewTypes)
	return out
}

// Priority grades the urgency of text.
func (s *Set) Priority(text string) models.Priority {
	switch {
	case s.highPriority.Match(text):
		return models.PriorityHigh
	case s.mediumPriority.Match(text):
		return models.PriorityMedium
	}
	return models.PriorityLow
}
