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
	"reflect"
	"testing"
	"time"

	"github.com/jobsignal/scanner/internal/models"
	"github.com/jobsignal/scanner/internal/normalize"
	"github.com/jobsignal/scanner/internal/rules"
)

// Wednesday.
var received = time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)

func newTestExtractor() *Extractor {
	return New(rules.MustCompileDefault())
}

func extractText(e *Extractor, subject, body string, sender Sender, label models.Label) Result {
	msg := normalize.Message(models.RawMessage{ID: "t", Subject: subject, Body: body})
	return e.Extract(msg, received, sender, label)
}

func TestExtract_PhoneScreenInvite(t *testing.T) {
	e := newTestExtractor()
	body := "We'd like to schedule a phone screen with you at Acme Corp for the Software Engineer role on Monday at 2pm"

	res := extractText(e, "", body, Sender{}, models.LabelInterviewInvite)
	f := res.Fields

	if f.Company == nil || *f.Company != "Acme Corp" {
		t.Errorf("Company = %v, want Acme Corp", f.Company)
	}
	if f.Role == nil || *f.Role != "Software Engineer" {
		t.Errorf("Role = %v, want Software Engineer", f.Role)
	}
	if f.Modality == nil || *f.Modality != models.ModalityPhone {
		t.Errorf("Modality = %v, want phone", f.Modality)
	}
	wantDate := models.Date{Year: 2026, Month: time.March, Day: 9}
	if f.InterviewDate == nil || *f.InterviewDate != wantDate {
		t.Errorf("InterviewDate = %v, want %v", f.InterviewDate, wantDate)
	}
	if f.InterviewTime == nil || *f.InterviewTime != (models.Clock{Hour: 14}) {
		t.Errorf("InterviewTime = %v, want 14:00", f.InterviewTime)
	}
	if f.InterviewType == nil || *f.InterviewType != "phone_screen" {
		t.Errorf("InterviewType = %v, want phone_screen", f.InterviewType)
	}

	if got := res.Strategies[models.FieldCompany]; got != "at_phrase_body" {
		t.Errorf("company strategy = %q, want at_phrase_body", got)
	}
	if got := res.Strategies[models.FieldInterviewDate]; got != "weekday" {
		t.Errorf("date strategy = %q, want weekday", got)
	}
}

func TestExtract_UnrelatedExtractsNothing(t *testing.T) {
	e := newTestExtractor()
	res := extractText(e, "Interview at Acme", "Monday at 2pm on Zoom", Sender{Address: "a@acme.com", Name: "Ann Lee"}, models.LabelUnrelated)

	if !res.Fields.Empty() {
		t.Errorf("expected no fields for unrelated, got %+v", res.Fields)
	}
	if len(res.Confidence) != 0 {
		t.Errorf("expected no confidences, got %v", res.Confidence)
	}
}

func TestExtract_RecruiterOutreachCompanyAndRoleOnly(t *testing.T) {
	e := newTestExtractor()
	body := "I came across your profile. We are hiring for the Staff Engineer role at Hooli. Free for a Zoom call on Monday at 3pm?"

	res := extractText(e, "", body, Sender{Name: "Gavin Belson"}, models.LabelRecruiterOutreach)

	if res.Fields.Company == nil || *res.Fields.Company != "Hooli" {
		t.Errorf("Company = %v, want Hooli", res.Fields.Company)
	}
	if res.Fields.Role == nil || *res.Fields.Role != "Staff Engineer" {
		t.Errorf("Role = %v, want Staff Engineer", res.Fields.Role)
	}
	if res.Fields.InterviewDate != nil || res.Fields.InterviewTime != nil || res.Fields.Modality != nil {
		t.Errorf("expected no schedule fields, got %+v", res.Fields)
	}
	if res.Fields.Platform != nil || res.Fields.Interviewer != nil {
		t.Errorf("expected no supplementary fields, got %+v", res.Fields)
	}
}

func TestExtract_ModalityDefaultOnlyForInvites(t *testing.T) {
	e := newTestExtractor()
	body := "Let's talk about next steps."

	invite := extractText(e, "", body, Sender{}, models.LabelInterviewInvite)
	if invite.Fields.Modality == nil || *invite.Fields.Modality != models.ModalityUnspecified {
		t.Errorf("invite Modality = %v, want unspecified", invite.Fields.Modality)
	}
	if c := invite.Confidence[models.FieldModality]; c != 0.2 {
		t.Errorf("unspecified modality confidence = %v, want 0.2", c)
	}

	offer := extractText(e, "", body, Sender{}, models.LabelOffer)
	if offer.Fields.Modality != nil {
		t.Errorf("offer Modality = %v, want nil", *offer.Fields.Modality)
	}
}

func TestExtract_Company(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name     string
		subject  string
		body     string
		address  string
		want     string
		strategy string
	}{
		{"subject wins over body", "Interview at Initech", "Join us at Globex Corporation.", "", "Initech", "at_phrase_subject"},
		{"trailing punctuation", "", "We loved meeting you at Bank of America.", "", "Bank of America", "at_phrase_body"},
		{"skips times and weekdays", "", "See you Monday at 10am at Pied Piper.", "", "Pied Piper", "at_phrase_body"},
		{"skips platforms", "", "Meet at Zoom link below, at Vandelay Industries HQ", "", "Vandelay Industries HQ", "at_phrase_body"},
		{"accented name", "", "We'd like to interview you at Société Générale for the Analyst role.", "", "Société Générale", "at_phrase_body"},
		{"accented first letter", "", "Your interview at Zürich Insurance is confirmed.", "", "Zürich Insurance", "at_phrase_body"},
		{"stops before weekday", "", "Phone screen at Acme Corp Monday at 2pm.", "", "Acme Corp", "at_phrase_body"},
		{"stops before month", "", "Onsite at Globex March 12.", "", "Globex", "at_phrase_body"},
		{"sender domain", "", "Thanks for applying!", "careers@mail.acme-robotics.com", "Acme Robotics", "sender_domain"},
		{"country code domain", "", "Hello", "talent@umbrella.co.uk", "Umbrella", "sender_domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractText(e, tt.subject, tt.body, Sender{Address: tt.address}, models.LabelApplicationConfirmation)
			if res.Fields.Company == nil || *res.Fields.Company != tt.want {
				t.Fatalf("Company = %v, want %q", res.Fields.Company, tt.want)
			}
			if got := res.Strategies[models.FieldCompany]; got != tt.strategy {
				t.Errorf("strategy = %q, want %q", got, tt.strategy)
			}
		})
	}
}

func TestExtract_CompanyProviderDomainIgnored(t *testing.T) {
	e := newTestExtractor()
	for _, addr := range []string{"jane@gmail.com", "no-reply@us.greenhouse.io", "not-an-address"} {
		res := extractText(e, "", "Thank you for applying.", Sender{Address: addr}, models.LabelApplicationConfirmation)
		if res.Fields.Company != nil {
			t.Errorf("address %q: Company = %q, want nil", addr, *res.Fields.Company)
		}
	}
}

func TestExtract_SenderDomainScoresBelowPhrase(t *testing.T) {
	e := newTestExtractor()
	sender := Sender{Address: "jobs@acme.com"}

	phrase := extractText(e, "", "Interview at Acme Corp", sender, models.LabelInterviewInvite)
	domain := extractText(e, "", "Interview with us", sender, models.LabelInterviewInvite)

	if phrase.Confidence[models.FieldCompany] <= domain.Confidence[models.FieldCompany] {
		t.Errorf("phrase confidence %.2f should exceed domain confidence %.2f",
			phrase.Confidence[models.FieldCompany], domain.Confidence[models.FieldCompany])
	}
}

func TestExtract_Role(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name     string
		subject  string
		body     string
		want     string
		strategy string
	}{
		{"for the role", "", "Thanks for applying for the Senior Data Engineer position.", "Senior Data Engineer", "for_the_title_role"},
		{"accented title", "", "Thanks for applying for the Ingénieur Réseau position.", "Ingénieur Réseau", "for_the_title_role"},
		{"no suffix no guess", "", "We'd love to have you join as a Product Designer in our team.", "", ""},
		{"position of", "", "Your application for the position of Head of Growth at Hooli", "Head of Growth", "position_of_title"},
		{"labelled", "", "Role: QA Analyst. Location: Remote", "QA Analyst", "labelled_title"},
		{"subject title", "Backend Engineer Role - Next steps", "hello", "Backend Engineer", "subject_title"},
		{"lowercase is not a title", "", "applying for the engineering role", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractText(e, tt.subject, tt.body, Sender{}, models.LabelApplicationConfirmation)
			if tt.want == "" {
				if res.Fields.Role != nil {
					t.Errorf("Role = %q, want nil", *res.Fields.Role)
				}
				return
			}
			if res.Fields.Role == nil || *res.Fields.Role != tt.want {
				t.Fatalf("Role = %v, want %q", res.Fields.Role, tt.want)
			}
			if got := res.Strategies[models.FieldRole]; got != tt.strategy {
				t.Errorf("strategy = %q, want %q", got, tt.strategy)
			}
		})
	}
}

func TestExtract_InviteDetails(t *testing.T) {
	e := newTestExtractor()
	body := "Please join a technical interview on Google Meet. Expect a coding challenge and some system design."

	res := extractText(e, "", body, Sender{Name: "Priya Raman"}, models.LabelInterviewInvite)

	if res.Fields.Platform == nil || *res.Fields.Platform != "Google Meet" {
		t.Errorf("Platform = %v, want Google Meet", res.Fields.Platform)
	}
	if res.Fields.InterviewType == nil || *res.Fields.InterviewType != "technical" {
		t.Errorf("InterviewType = %v, want technical", res.Fields.InterviewType)
	}
	if res.Fields.Interviewer == nil || *res.Fields.Interviewer != "Priya Raman" {
		t.Errorf("Interviewer = %v, want Priya Raman", res.Fields.Interviewer)
	}
	if res.Fields.Modality == nil || *res.Fields.Modality != models.ModalityVideo {
		t.Errorf("Modality = %v, want video", res.Fields.Modality)
	}
}

func TestExtract_InterviewerSkipsGenericSenders(t *testing.T) {
	e := newTestExtractor()
	for _, name := range []string{"", "Acme Talent Team", "jobs@acme.com", "Recruiter 42"} {
		res := extractText(e, "", "Interview on Monday", Sender{Name: name}, models.LabelInterviewInvite)
		if res.Fields.Interviewer != nil {
			t.Errorf("name %q: Interviewer = %q, want nil", name, *res.Fields.Interviewer)
		}
	}
}

func TestStrategyOrder(t *testing.T) {
	tests := []struct {
		field models.Field
		want  []string
	}{
		{models.FieldCompany, []string{"at_phrase_subject", "at_phrase_body", "sender_domain"}},
		{models.FieldRole, []string{"for_the_title_role", "position_of_title", "labelled_title", "subject_title"}},
		{models.FieldInterviewDate, []string{"iso_date", "month_day", "numeric_date", "today_tomorrow", "next_weekday", "weekday"}},
		{models.FieldInterviewTime, []string{"twelve_hour", "twenty_four_hour", "noon"}},
		{models.FieldModality, []string{"keyword", "invite_default"}},
	}

	for _, tt := range tests {
		if got := StrategyOrder(tt.field); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("StrategyOrder(%s) = %v, want %v", tt.field, got, tt.want)
		}
	}

	if got := StrategyOrder("salary"); got != nil {
		t.Errorf("StrategyOrder(unknown) = %v, want nil", got)
	}
}

func TestStrategyConfidence_DirectBeatsHeuristic(t *testing.T) {
	check := func(name string, confs []float64) {
		for i := 1; i < len(confs); i++ {
			if confs[i] > confs[i-1] {
				t.Errorf("%s: strategy %d confidence %.2f exceeds earlier %.2f", name, i, confs[i], confs[i-1])
			}
		}
	}
	check("company", confidences(companyStrategies))
	check("role", confidences(roleStrategies))
	check("date", confidences(dateStrategies))
	check("time", confidences(timeStrategies))
	check("modality", confidences(modalityStrategies))
}

func confidences[T any](strats []strategy[T]) []float64 {
	out := make([]float64, len(strats))
	for i, s := range strats {
		out[i] = s.confidence
	}
	return out
}
