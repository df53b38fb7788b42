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

// Package normalize turns a raw email into clean text for matching.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/jobsignal/scanner/internal/models"
)

var (
	htmlTagRe       = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^>]*)?/?>`)
	subjectPrefixRe = regexp.MustCompile(`(?i)^\s*(re|fw|fwd|aw)\s*(\[\d+\])?\s*:\s*`)
	wroteLineRe     = regexp.MustCompile(`(?i)^\s*on\s.+\swrote:\s*$`)
	onLineRe        = regexp.MustCompile(`(?i)^\s*on\s.*\d`)
	wroteTailRe     = regexp.MustCompile(`(?i)wrote:\s*$`)
	originalMsgRe   = regexp.MustCompile(`(?i)^\s*-{2,}\s*(original message|forwarded message)\s*-{2,}\s*$`)
	fromHeaderRe    = regexp.MustCompile(`(?i)^\s*from:\s*\S`)
	replyHeaderRe   = regexp.MustCompile(`(?i)^\s*(sent|date|to|subject):\s*`)
)

// Message derives the NormalizedMessage for m. It never fails: when the body
// cannot be decoded the raw body is used verbatim.
func Message(m models.RawMessage) models.NormalizedMessage {
	subject := Subject(m.Subject)
	body := Body(m.Body)

	return models.NormalizedMessage{
		Source:            m.ID,
		CleanSubject:      subject,
		CleanSubjectLower: strings.ToLower(subject),
		CleanBody:         body,
		CleanBodyLower:    strings.ToLower(body),
	}
}

// Subject strips reply/forward prefixes and collapses whitespace.
func Subject(s string) string {
	if !utf8.ValidString(s) {
		return s
	}
	for {
		loc := subjectPrefixRe.FindStringIndex(s)
		if loc == nil {
			break
		}
		s = s[loc[1]:]
	}
	return collapse(s)
}

// Body converts HTML to text, cuts quoted replies and collapses whitespace.
func Body(raw string) string {
	if !utf8.ValidString(raw) {
		return raw
	}

	text := html.UnescapeString(raw)
	if htmlTagRe.MatchString(raw) {
		converted, err := htmlToText(raw)
		if err != nil {
			return raw
		}
		text = converted
	}

	return collapse(stripQuoted(text))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripQuoted drops quoted lines and everything after the first reply header.
func stripQuoted(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))

	for i, line := range lines {
		if wroteLineRe.MatchString(line) || originalMsgRe.MatchString(line) {
			break
		}
		// Attributions wrapped onto a second line.
		if onLineRe.MatchString(line) && i+1 < len(lines) && wroteTailRe.MatchString(lines[i+1]) {
			break
		}
		if fromHeaderRe.MatchString(line) && i+1 < len(lines) && replyHeaderRe.MatchString(lines[i+1]) {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// htmlToText walks the parsed document and keeps visible text, breaking lines
// after block elements so quoted-reply detection still sees line starts.
func htmlToText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "style", "script", "noscript", "head", "meta", "link", "title", "blockquote":
				return
			case "br":
				b.WriteString("\n")
			}
		case html.TextNode:
			b.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "p", "div", "tr", "li", "ul", "ol", "table", "section", "article",
				"header", "footer", "center", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		}
	}
	walk(doc)

	return b.String(), nil
}
