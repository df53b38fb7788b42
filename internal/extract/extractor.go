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

// Package extract pulls structured interview details out of a classified
// message.
//
// Every field is filled by an ordered list of strategies; the first one that
// produces a value wins and its name and confidence are recorded. Direct
// phrase matches carry higher confidence than heuristics such as deriving the
// company from the sender's domain.
package extract

import (
	"time"

	"github.com/jobsignal/scanner/internal/models"
	"github.com/jobsignal/scanner/internal/rules"
)

// Sender identifies who sent the message.
type Sender struct {
	Address string
	Name    string
}

// Result carries the extracted fields along with, for every field that was
// found, the confidence and name of the strategy that produced it.
type Result struct {
	Fields     models.ExtractedFields
	Confidence models.FieldConfidence
	Strategies map[models.Field]string
}

// input is the per-message view handed to strategies.
type input struct {
	msg        models.NormalizedMessage
	receivedAt time.Time
	sender     Sender
}

// strategy is one way of finding a field value.
type strategy[T any] struct {
	name       string
	confidence float64
	find       func(e *Extractor, in *input) (T, bool)
}

// Extractor applies the field strategies. It is safe for concurrent use.
type Extractor struct {
	rules *rules.Set
}

// New creates an Extractor backed by rs.
func New(rs *rules.Set) *Extractor {
	return &Extractor{rules: rs}
}

// StrategyOrder returns the names of the strategies tried for field, in the
// order they are tried.
func StrategyOrder(field models.Field) []string {
	switch field {
	case models.FieldCompany:
		return names(companyStrategies)
	case models.FieldRole:
		return names(roleStrategies)
	case models.FieldInterviewDate:
		return names(dateStrategies)
	case models.FieldInterviewTime:
		return names(timeStrategies)
	case models.FieldModality:
		return names(modalityStrategies)
	case models.FieldPlatform:
		return names(platformStrategies)
	case models.FieldInterviewType:
		return names(interviewTypeStrategies)
	case models.FieldInterviewer:
		return names(interviewerStrategies)
	default:
		return nil
	}
}

func names[T any](strats []strategy[T]) []string {
	out := make([]string, len(strats))
	for i, s := range strats {
		out[i] = s.name
	}
	return out
}

// Extract pulls the fields appropriate for label. Unrelated messages yield an
// empty result; recruiter outreach only yields company and role, since it
// rarely carries a scheduled event.
func (e *Extractor) Extract(msg models.NormalizedMessage, receivedAt time.Time, sender Sender, label models.Label) Result {
	res := Result{
		Confidence: make(models.FieldConfidence),
		Strategies: make(map[models.Field]string),
	}
	if label == models.LabelUnrelated || !label.Valid() {
		return res
	}

	in := &input{msg: msg, receivedAt: receivedAt, sender: sender}

	res.Fields.Company = apply(e, in, &res, models.FieldCompany, companyStrategies)
	res.Fields.Role = apply(e, in, &res, models.FieldRole, roleStrategies)
	if label == models.LabelRecruiterOutreach {
		return res
	}

	res.Fields.InterviewDate = apply(e, in, &res, models.FieldInterviewDate, dateStrategies)
	res.Fields.InterviewTime = apply(e, in, &res, models.FieldInterviewTime, timeStrategies)
	res.Fields.Platform = apply(e, in, &res, models.FieldPlatform, platformStrategies)

	if label == models.LabelInterviewInvite {
		res.Fields.Modality = apply(e, in, &res, models.FieldModality, modalityStrategies)
		res.Fields.InterviewType = apply(e, in, &res, models.FieldInterviewType, interviewTypeStrategies)
		res.Fields.Interviewer = apply(e, in, &res, models.FieldInterviewer, interviewerStrategies)
	} else {
		// Only an invite implies a scheduled event, so other labels get no
		// unspecified default.
		res.Fields.Modality = apply(e, in, &res, models.FieldModality, modalityStrategies[:1])
	}

	return res
}

func apply[T any](e *Extractor, in *input, res *Result, field models.Field, strats []strategy[T]) *T {
	for _, s := range strats {
		if v, ok := s.find(e, in); ok {
			res.Confidence[field] = s.confidence
			res.Strategies[field] = s.name
			return &v
		}
	}
	return nil
}

// texts returns the searchable text in the order fields are looked for:
// body first, then subject.
func (in *input) texts() []string {
	return []string{in.msg.CleanBody, in.msg.CleanSubject}
}

func (in *input) lowerTexts() []string {
	return []string{in.msg.CleanBodyLower, in.msg.CleanSubjectLower}
}
