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
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Building blocks for capitalized proper-noun sequences.
const (
	nameWord  = `\p{Lu}[\p{L}\p{N}_&'-]*`
	titleWord = `\p{Lu}[\p{L}\p{N}_+#/&-]*`
	titlePart = titleWord + `(?:\s+(?:of\b|and\b|&|` + titleWord + `)){0,6}`
)

var (
	atCompanyRe = regexp.MustCompile(`\b[Aa]t\s+(` + nameWord + `(?:\s+(?:of\b|&|` + nameWord + `)){0,5})`)

	roleForRe      = regexp.MustCompile(`\b(?i:for|as|in|to)\s+(?i:the|a|an)\s+(` + titlePart + `)\s+(?i:position|role|opening|opportunity)\b`)
	rolePositionRe = regexp.MustCompile(`\b(?i:position of)\s+(?:(?i:the|a|an)\s+)?(` + titlePart + `)`)
	roleLabelRe    = regexp.MustCompile(`\b(?i:role|position|job title)\s*:\s*(` + titlePart + `)`)
	roleSubjectRe  = regexp.MustCompile(`\b(` + titlePart + `)\s+(?i:position|role)\b`)
)

// Words that start capitalized sequences after "at" without naming an
// employer.
var notCompany = map[string]bool{
	"i": true, "we": true, "the": true, "our": true, "this": true, "that": true,
	"noon": true, "midnight": true, "am": true, "pm": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true, "may": true,
	"june": true, "july": true, "august": true, "september": true,
	"october": true, "november": true, "december": true,
}

// Second-level labels that sit under a country code, as in acme.co.uk.
var secondLevel = map[string]bool{
	"co": true, "com": true, "org": true, "net": true, "ac": true, "gov": true, "edu": true,
}

var companyStrategies = []strategy[string]{
	{name: "at_phrase_subject", confidence: 0.9, find: func(e *Extractor, in *input) (string, bool) {
		return e.companyAt(in.msg.CleanSubject)
	}},
	{name: "at_phrase_body", confidence: 0.85, find: func(e *Extractor, in *input) (string, bool) {
		return e.companyAt(in.msg.CleanBody)
	}},
	{name: "sender_domain", confidence: 0.5, find: func(e *Extractor, in *input) (string, bool) {
		return e.companyFromSender(in.sender.Address)
	}},
}

var roleStrategies = []strategy[string]{
	{name: "for_the_title_role", confidence: 0.9, find: func(_ *Extractor, in *input) (string, bool) {
		return firstTitle(roleForRe, in.texts())
	}},
	{name: "position_of_title", confidence: 0.85, find: func(_ *Extractor, in *input) (string, bool) {
		return firstTitle(rolePositionRe, in.texts())
	}},
	{name: "labelled_title", confidence: 0.8, find: func(_ *Extractor, in *input) (string, bool) {
		return firstTitle(roleLabelRe, in.texts())
	}},
	{name: "subject_title", confidence: 0.7, find: func(_ *Extractor, in *input) (string, bool) {
		return firstTitle(roleSubjectRe, []string{in.msg.CleanSubject})
	}},
}

// companyAt finds the first "at <Capitalized sequence>" that names an
// employer rather than a time, a date or a meeting platform.
func (e *Extractor) companyAt(text string) (string, bool) {
	for _, m := range atCompanyRe.FindAllStringSubmatch(text, -1) {
		words := strings.Fields(m[1])
		if isStopWord(words[0]) {
			continue
		}
		name := trimName(cutAtStopWord(words))
		if name == "" {
			continue
		}
		if e.isPlatform(name) {
			continue
		}
		return name, true
	}
	return "", false
}

// cutAtStopWord ends the sequence before the first weekday, month or other
// word that cannot continue an employer name.
func cutAtStopWord(words []string) string {
	for i := 1; i < len(words); i++ {
		if isStopWord(words[i]) {
			return strings.Join(words[:i], " ")
		}
	}
	return strings.Join(words, " ")
}

func isStopWord(w string) bool {
	return notCompany[strings.ToLower(strings.TrimRight(w, ".,;:!?'-"))]
}

func (e *Extractor) isPlatform(name string) bool {
	for _, p := range e.rules.Platforms() {
		if p.Keywords.Match(name) {
			return true
		}
	}
	return false
}

// companyFromSender derives an employer name from the registrable part of the
// sender's domain, skipping mail and applicant-tracking providers.
func (e *Extractor) companyFromSender(address string) (string, bool) {
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return "", false
	}
	domain := strings.ToLower(strings.Trim(address[at+1:], " >."))
	if domain == "" || e.rules.IsProviderDomain(domain) {
		return "", false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "", false
	}
	idx := len(labels) - 2
	if len(labels) >= 3 && len(labels[len(labels)-1]) == 2 && secondLevel[labels[len(labels)-2]] {
		idx = len(labels) - 3
	}

	name := strings.NewReplacer("-", " ", "_", " ").Replace(labels[idx])
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", false
	}
	// Casers carry state, so one is built per call.
	return cases.Title(language.English).String(name), true
}

func firstTitle(re *regexp.Regexp, texts []string) (string, bool) {
	for _, text := range texts {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if title := trimName(m[1]); title != "" {
				return title, true
			}
		}
	}
	return "", false
}

// trimName drops trailing punctuation and dangling connectors.
func trimName(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		last := strings.TrimRight(words[len(words)-1], ".,;:!?'-")
		if last == "" || last == "of" || last == "and" || last == "&" {
			words = words[:len(words)-1]
			continue
		}
		words[len(words)-1] = last
		break
	}
	return strings.Join(words, " ")
}
