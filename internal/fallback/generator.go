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

// Package fallback produces a fixed batch of synthetic recruiting emails used
// when no real mailbox is available.
package fallback

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobsignal/scanner/internal/models"
)

// namespace seeds the stable message IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("fallback.jobsignal.local"))

type sample struct {
	seed          string
	subject       string
	senderName    string
	senderAddress string
	body          string
	age           time.Duration
}

var samples = []sample{
	{
		seed:          "interview-techcorp",
		subject:       "Interview Invitation - Senior Software Engineer",
		senderName:    "Sarah Chen",
		senderAddress: "sarah.chen@techcorp.io",
		body: "Hi, thank you for your interest in TechCorp. We'd like to invite you to a technical interview " +
			"for the Senior Software Engineer position at TechCorp. The interview is scheduled for Tuesday " +
			"at 2:00 PM over Zoom. Please confirm your availability.",
		age: 2 * time.Hour,
	},
	{
		seed:          "phone-screen-datacom",
		subject:       "Phone Screen: Data Analyst Role",
		senderName:    "Alex Rivera",
		senderAddress: "alex.rivera@datacom.com",
		body: "Hello! I'm reaching out from the hiring team at DataCom. We'd love to set up a 30-minute " +
			"phone screen for the Data Analyst role. Are you free Thursday at 10:00 AM?",
		age: 5 * time.Hour,
	},
	{
		seed:          "offer-innovatetech",
		subject:       "Job Offer - Product Manager",
		senderName:    "InnovateTech People Team",
		senderAddress: "people@innovatetech.com",
		body: "Congratulations! We are delighted to extend you an offer for the Product Manager role at " +
			"InnovateTech. Your offer letter with the compensation package details is attached. Please let " +
			"us know your decision by Friday.",
		age: 26 * time.Hour,
	},
	{
		seed:          "rejection-globex",
		subject:       "Update on your application",
		senderName:    "Globex Talent Team",
		senderAddress: "talent@globex.com",
		body: "Thank you for your interest in the Backend Engineer position at Globex. Unfortunately, we have " +
			"decided to move forward with other candidates. We wish you the best in your search.",
		age: 49 * time.Hour,
	},
	{
		seed:          "confirmation-initech",
		subject:       "Application Received: QA Analyst",
		senderName:    "Initech Careers",
		senderAddress: "no-reply@initech.com",
		body: "Thank you for applying to Initech! We have received your application for the QA Analyst " +
			"position and will review your application shortly.",
		age: 72 * time.Hour,
	},
	{
		seed:          "outreach-hooli",
		subject:       "Exciting opportunity at Hooli",
		senderName:    "Jordan Blake",
		senderAddress: "jordan.blake@hooli.com",
		body: "Hi there, I came across your profile on LinkedIn and think you could be a great fit for a " +
			"Staff Engineer role on our platform team. Would you be open to a quick chat?",
		age: 96 * time.Hour,
	},
	{
		seed:          "newsletter-digest",
		subject:       "Your weekly tech digest",
		senderName:    "Weekly Digest",
		senderAddress: "digest@newsletter.example.com",
		body: "Top stories this week: a new JavaScript framework, tips for remote work productivity, and " +
			"the best mechanical keyboards of the year.",
		age: 120 * time.Hour,
	},
}

// Generator builds the synthetic batch. Timestamps are anchored to the
// injected clock so runs with a fixed clock are reproducible.
type Generator struct {
	now func() time.Time
}

// New creates a Generator. A nil clock uses time.Now.
func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Messages returns a fresh copy of the synthetic batch, newest first.
func (g *Generator) Messages() []models.RawMessage {
	now := g.now()
	msgs := make([]models.RawMessage, 0, len(samples))
	for _, s := range samples {
		msgs = append(msgs, models.RawMessage{
			ID:            uuid.NewSHA1(namespace, []byte(s.seed)).String(),
			Subject:       s.subject,
			SenderAddress: s.senderAddress,
			SenderName:    s.senderName,
			Body:          s.body,
			ReceivedAt:    now.Add(-s.age),
		})
	}
	return msgs
}
