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

package extract

import (
	"strings"
	"unicode"
)

const (
	typeKeywordWeight = 3
	typeClueWeight    = 1
)

var platformStrategies = []strategy[string]{
	{name: "keyword", confidence: 0.9, find: func(e *Extractor, in *input) (string, bool) {
		text := in.msg.CleanBodyLower + "\n" + in.msg.CleanSubjectLower
		for _, p := range e.rules.Platforms() {
			if p.Keywords.Match(text) {
				return p.Name, true
			}
		}
		return "", false
	}},
}

var interviewTypeStrategies = []strategy[string]{
	{name: "keyword", confidence: 0.8, find: func(e *Extractor, in *input) (string, bool) {
		return e.interviewType(in, true)
	}},
	{name: "context_clue", confidence: 0.5, find: func(e *Extractor, in *input) (string, bool) {
		return e.interviewType(in, false)
	}},
}

var interviewerStrategies = []strategy[string]{
	{name: "sender_name", confidence: 0.6, find: func(e *Extractor, in *input) (string, bool) {
		return e.interviewer(in.sender.Name)
	}},
}

// interviewType returns the type with the highest weighted score. With
// requireKeyword set only types with at least one keyword hit qualify; ties
// go to the type listed first.
func (e *Extractor) interviewType(in *input, requireKeyword bool) (string, bool) {
	text := in.msg.CleanBodyLower + "\n" + in.msg.CleanSubjectLower

	best, bestScore := "", 0
	for _, it := range e.rules.InterviewTypes() {
		kw := it.Keywords.Count(text)
		if requireKeyword && kw == 0 {
			continue
		}
		score := kw*typeKeywordWeight + it.Clues.Count(text)*typeClueWeight
		if score > bestScore {
			best, bestScore = it.Type, score
		}
	}
	return best, best != ""
}

// interviewer treats the sender's display name as the interviewer unless it
// looks like an address or a shared team mailbox.
func (e *Extractor) interviewer(name string) (string, bool) {
	name = strings.Join(strings.Fields(strings.Trim(name, `"' `)), " ")
	if name == "" || strings.Contains(name, "@") {
		return "", false
	}
	if strings.IndexFunc(name, unicode.IsDigit) >= 0 {
		return "", false
	}
	if e.rules.IsGenericSender(name) {
		return "", false
	}
	return name, true
}
