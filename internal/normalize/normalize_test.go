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

package normalize

import (
	"testing"

	"github.com/jobsignal/scanner/internal/models"
)

func TestMessage_KeepsCaseAndLowerCopies(t *testing.T) {
	n := Message(models.RawMessage{
		ID:      "msg-1",
		Subject: "RE: Fwd:  Interview at Acme Corp",
		Body:    "Hello   there,\n\nWe'd like to meet.\t\tThanks",
	})

	if n.Source != "msg-1" {
		t.Errorf("Source = %q, want msg-1", n.Source)
	}
	if n.CleanSubject != "Interview at Acme Corp" {
		t.Errorf("CleanSubject = %q", n.CleanSubject)
	}
	if n.CleanSubjectLower != "interview at acme corp" {
		t.Errorf("CleanSubjectLower = %q", n.CleanSubjectLower)
	}
	if n.CleanBody != "Hello there, We'd like to meet. Thanks" {
		t.Errorf("CleanBody = %q", n.CleanBody)
	}
	if n.CleanBodyLower != "hello there, we'd like to meet. thanks" {
		t.Errorf("CleanBodyLower = %q", n.CleanBodyLower)
	}
}

func TestBody_StripsQuotedReplies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "quote markers",
			body: "Sounds good.\n> On the original thread\n> we said hello\nSee you then.",
			want: "Sounds good. See you then.",
		},
		{
			name: "wrote line",
			body: "Confirmed for Monday.\n\nOn Tue, Mar 3, 2026 at 9:00 AM Jane Doe <jane@acme.com> wrote:\nCan you do Monday?",
			want: "Confirmed for Monday.",
		},
		{
			name: "wrapped wrote line",
			body: "Tuesday works.\nOn Mon, Jan 5, 2026 at 10:00 AM Sarah Chen <\nsarah@acme.com> wrote:\nHow about Friday at 3pm?",
			want: "Tuesday works.",
		},
		{
			name: "on line without attribution is kept",
			body: "On March 9 we start at 2pm.\nPlease confirm.",
			want: "On March 9 we start at 2pm. Please confirm.",
		},
		{
			name: "original message separator",
			body: "Thanks!\n-----Original Message-----\nFrom: someone\nplease apply",
			want: "Thanks!",
		},
		{
			name: "outlook header block",
			body: "Works for me.\nFrom: Recruiter <r@acme.com>\nSent: Monday, March 2, 2026\nSubject: Interview",
			want: "Works for me.",
		},
		{
			name: "from line without header block is kept",
			body: "From: the hiring team at Acme\nWelcome aboard.",
			want: "From: the hiring team at Acme Welcome aboard.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Body(tt.body); got != tt.want {
				t.Errorf("Body() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBody_HTML(t *testing.T) {
	body := `<html><head><title>ignored</title><style>p{color:red}</style></head>
<body><p>Hi Sam,</p><div>We'd like to <b>schedule</b> an interview&nbsp;at Acme&amp;Co.</div>
<script>track()</script><blockquote>earlier thread</blockquote></body></html>`

	want := "Hi Sam, We'd like to schedule an interview at Acme&Co."
	if got := Body(body); got != want {
		t.Errorf("Body() = %q, want %q", got, want)
	}
}

func TestBody_HTMLWithoutCommonTags(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"lists and emphasis", "<ul><li>Interview at <em>Acme</em> Corp</li></ul>", "Interview at Acme Corp"},
		{"sections and entities", "<section><i>Interview</i> invite&nbsp;from Acme &amp; Co</section>", "Interview invite from Acme & Co"},
		{"centered", "<center>Offer letter</center>", "Offer letter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Body(tt.body); got != tt.want {
				t.Errorf("Body() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBody_PlainTextEntities(t *testing.T) {
	body := "Interview&nbsp;at Smith &amp; Jones"
	want := "Interview at Smith & Jones"
	if got := Body(body); got != want {
		t.Errorf("Body() = %q, want %q", got, want)
	}
}

func TestBody_InvalidUTF8IsVerbatim(t *testing.T) {
	raw := "bad \xff\xfe bytes   kept"
	if got := Body(raw); got != raw {
		t.Errorf("Body() = %q, want raw body verbatim", got)
	}
}

func TestBody_PlainTextWithAngleBrackets(t *testing.T) {
	// A comparison operator must not trigger HTML parsing.
	body := "Salary range: 100k < base < 150k"
	if got := Body(body); got != body {
		t.Errorf("Body() = %q, want %q", got, body)
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Re: Interview", "Interview"},
		{"RE: FW: re: Offer", "Offer"},
		{"Fwd[2]: Next steps", "Next steps"},
		{"Regarding your application", "Regarding your application"},
		{"  spaced    out  ", "spaced out"},
	}
	for _, tt := range tests {
		if got := Subject(tt.in); got != tt.want {
			t.Errorf("Subject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
