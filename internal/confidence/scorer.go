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

// Package confidence combines classification strength and extraction
// completeness into a single score.
package confidence

import (
	"math"

	"github.com/jobsignal/scanner/internal/models"
)

// Each half of the overall score is capped at this share.
const share = 0.5

// Scorer computes overall and per-field confidence.
type Scorer struct {
	ceiling float64
}

// New creates a Scorer. Raw classifier scores at or above ceiling count as
// full classification strength.
func New(ceiling float64) *Scorer {
	if ceiling <= 0 {
		ceiling = 1
	}
	return &Scorer{ceiling: ceiling}
}

// Score returns the overall confidence and a field confidence map holding an
// entry for every field. Fields missing from found score 0.
//
// overall = 0.5*min(raw/ceiling, 1) + 0.5*sum(core field confidence)/len(core)
//
// Unrelated messages always score 0.
func (s *Scorer) Score(label models.Label, raw float64, found models.FieldConfidence) (float64, models.FieldConfidence) {
	fields := make(models.FieldConfidence, len(models.AllFields))
	for _, f := range models.AllFields {
		fields[f] = 0
	}
	if label == models.LabelUnrelated {
		return 0, fields
	}

	for _, f := range models.AllFields {
		fields[f] = clamp(found[f])
	}

	classification := share * math.Min(math.Max(raw, 0)/s.ceiling, 1)

	var sum float64
	for _, f := range models.CoreFields {
		sum += fields[f]
	}
	completeness := share * sum / float64(len(models.CoreFields))

	return round3(classification + completeness), fields
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
