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

// Package classify assigns a recruiting-lifecycle label to a normalized
// message using weighted keyword rules.
package classify

import (
	"github.com/jobsignal/scanner/internal/models"
	"github.com/jobsignal/scanner/internal/rules"
)

// Classification is the outcome of classifying one message.
type Classification struct {
	Label models.Label
	// Score is the winning label's raw weighted score. It is kept even when
	// the label falls back to unrelated.
	Score float64
	// Scores holds the total for every label that carries rules.
	Scores map[models.Label]float64
	// Matched lists the expressions that fired for the winning label.
	Matched []string
}

// Classifier scores messages against a compiled rule set. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules *rules.Set
}

// New creates a Classifier backed by rs.
func New(rs *rules.Set) *Classifier {
	return &Classifier{rules: rs}
}

// Classify scores every label and returns the highest. Equal scores resolve
// to the label listed first in models.LabelPriority; a winning score below
// the minimum yields unrelated.
func (c *Classifier) Classify(msg models.NormalizedMessage) Classification {
	out := Classification{
		Label:  models.LabelUnrelated,
		Scores: make(map[models.Label]float64),
	}

	var best models.Label
	var bestMatched []string
	for _, lm := range c.rules.Labels() {
		score, matched := c.score(lm, msg)
		out.Scores[lm.Label] = score
		// Labels() is ordered by priority, so strict > keeps the earlier label on a tie.
		if best == "" || score > out.Score {
			best = lm.Label
			out.Score = score
			bestMatched = matched
		}
	}

	if best != "" && out.Score >= c.rules.MinScore() {
		out.Label = best
		out.Matched = bestMatched
	}
	return out
}

// score sums pattern weights. Each pattern counts at most once per field so a
// repetitive body cannot outweigh a single subject hit.
func (c *Classifier) score(lm rules.LabelMatchers, msg models.NormalizedMessage) (float64, []string) {
	var total float64
	var matched []string
	for _, m := range lm.Matchers {
		hit := false
		if m.Re.MatchString(msg.CleanSubjectLower) {
			total += m.Weight * c.rules.SubjectWeight()
			hit = true
		}
		if m.Re.MatchString(msg.CleanBodyLower) {
			total += m.Weight * c.rules.BodyWeight()
			hit = true
		}
		if hit {
			matched = append(matched, m.Expr)
		}
	}
	return total, matched
}
