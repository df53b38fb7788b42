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

package rules

import "github.com/jobsignal/scanner/internal/models"

// Default returns the built-in ruleset. Each call returns a fresh copy that
// the caller may modify before compiling.
func Default() *Ruleset {
	return &Ruleset{
		SubjectWeight: 2,
		BodyWeight:    1,
		MinScore:      2,
		ScoreCeiling:  12,
		RolloverDays:  30,
		Labels: []LabelRules{
			{
				Label: models.LabelInterviewInvite,
				Patterns: []Pattern{
					{Expr: `\binterview(s|ing)?\b`, Weight: 3},
					{Expr: `\bphone screen(ing)?\b`, Weight: 3},
					{Expr: `\bschedul(e|ing)\b`, Weight: 2},
					{Expr: `\b(video|zoom|teams|phone) (call|interview)\b`, Weight: 2},
					{Expr: `\b(first|second|third|final) round\b`, Weight: 2},
					{Expr: `\b(availability|available times|time slots?)\b`, Weight: 1},
					{Expr: `\b(onsite|on-site|in person|in-person)\b`, Weight: 1},
					{Expr: `\b(calendly|google meet|zoom)\b`, Weight: 1},
					{Expr: `\bnext (steps?|round)\b`, Weight: 1},
				},
			},
			{
				Label: models.LabelOffer,
				Patterns: []Pattern{
					{Expr: `\boffer letter\b`, Weight: 4},
					{Expr: `\b(pleased|happy|delighted|excited|thrilled) to (extend|offer)\b`, Weight: 4},
					{Expr: `\bjob offer\b`, Weight: 3},
					{Expr: `\bextend(ing)? (you )?an offer\b`, Weight: 3},
					{Expr: `\b(compensation package|starting salary|base salary|signing bonus)\b`, Weight: 2},
					{Expr: `\bcongratulations\b`, Weight: 1},
				},
			},
			{
				Label: models.LabelRejection,
				Patterns: []Pattern{
					{Expr: `\b(not|won't|will not) (be )?(moving|move) forward\b`, Weight: 4},
					{Expr: `\bdecided to (pursue|proceed with|move forward with|go with) other candidates\b`, Weight: 4},
					{Expr: `\bnot (been )?selected\b`, Weight: 3},
					{Expr: `\bposition has been filled\b`, Weight: 3},
					{Expr: `\bunfortunately\b`, Weight: 2},
					{Expr: `\bother candidates\b`, Weight: 2},
					{Expr: `\b(regret to inform|wish you (the best|success|luck))\b`, Weight: 2},
				},
			},
			{
				Label: models.LabelApplicationConfirmation,
				Patterns: []Pattern{
					{Expr: `\bthank(s| you) for (applying|your application|your interest)\b`, Weight: 3},
					{Expr: `\b(application|applied) (has been |was )?(received|submitted)\b`, Weight: 3},
					{Expr: `\b(we )?(have )?received your application\b`, Weight: 3},
					{Expr: `\breview (your|the) application\b`, Weight: 2},
					{Expr: `\bapplication\b`, Weight: 1},
				},
			},
			{
				Label: models.LabelRecruiterOutreach,
				Patterns: []Pattern{
					{Expr: `\b(came across|found|saw) your (profile|resume|background)\b`, Weight: 3},
					{Expr: `\b(opportunity|role|position) (that )?(might|may|could) (interest you|be of interest)\b`, Weight: 3},
					{Expr: `\b(open to|interested in) (new |exploring )?(opportunities|roles|a new role)\b`, Weight: 3},
					{Expr: `\b(great|good|strong) fit\b`, Weight: 1},
					{Expr: `\brecruiter\b`, Weight: 1},
					{Expr: `\blinkedin\b`, Weight: 1},
					{Expr: `\bquick chat\b`, Weight: 1},
				},
			},
		},
		ProviderDomains: []string{
			"gmail.com", "googlemail.com", "yahoo.com", "hotmail.com", "outlook.com",
			"live.com", "icloud.com", "me.com", "aol.com", "proton.me",
			"protonmail.com", "mail.com", "gmx.com",
			"greenhouse.io", "lever.co", "myworkday.com", "workday.com",
			"smartrecruiters.com", "icims.com", "ashbyhq.com", "jobvite.com",
			"linkedin.com", "indeed.com",
		},
		GenericSenders: []string{
			"team", "recruiting", "recruitment", "careers", "talent", "hr",
			"no-reply", "noreply", "notifications", "jobs", "hiring", "people",
		},
		Modality: ModalityKeywords{
			Phone:  []string{"phone screen", "phone screening", "phone interview", "phone call", "call you at"},
			Video:  []string{"video call", "video interview", "zoom", "google meet", "microsoft teams", "teams meeting", "webex", "skype"},
			Onsite: []string{"onsite", "on-site", "in person", "in-person", "at our office", "visit our office"},
		},
		Platforms: []PlatformRule{
			{Name: "Zoom", Keywords: []string{"zoom", "zoom.us"}},
			{Name: "Microsoft Teams", Keywords: []string{"microsoft teams", "teams meeting", "teams.microsoft.com"}},
			{Name: "Google Meet", Keywords: []string{"google meet", "meet.google.com"}},
			{Name: "Webex", Keywords: []string{"webex"}},
			{Name: "Skype", Keywords: []string{"skype"}},
		},
		InterviewTypes: []InterviewTypeRule{
			{
				Type:     "technical",
				Keywords: []string{"technical interview", "coding interview", "technical assessment", "coding challenge", "pair programming", "whiteboard", "leetcode", "hackerrank", "codility"},
				Clues:    []string{"algorithms", "data structures", "coding skills", "programming language"},
			},
			{
				Type:     "behavioral",
				Keywords: []string{"behavioral interview", "behavioural interview", "culture fit", "cultural fit", "team fit", "star method", "tell me about a time"},
				Clues:    []string{"company culture", "work style", "career goals", "past experience"},
			},
			{
				Type:     "system_design",
				Keywords: []string{"system design", "architecture interview", "design interview", "distributed systems"},
				Clues:    []string{"scalability", "fault tolerance", "database schema"},
			},
			{
				Type:     "phone_screen",
				Keywords: []string{"phone screen", "phone screening", "initial call", "recruiter call", "screening call", "intro call"},
				Clues:    []string{"get to know", "your background", "interest in the role"},
			},
			{
				Type:     "final_round",
				Keywords: []string{"final round", "final interview", "onsite interview", "panel interview", "meet the team"},
				Clues:    []string{"final step", "last stage", "leadership team"},
			},
			{
				Type:     "product",
				Keywords: []string{"product interview", "product sense", "product design", "product strategy"},
				Clues:    []string{"product roadmap", "user needs"},
			},
			{
				Type:     "case_study",
				Keywords: []string{"case study", "case interview", "business case"},
				Clues:    []string{"market sizing", "profitability"},
			},
			{
				Type:     "presentation",
				Keywords: []string{"presentation", "walk us through", "showcase"},
				Clues:    []string{"prepare slides", "present your"},
			},
		},
		Priority: PriorityKeywords{
			High:   []string{"urgent", "asap", "immediately", "today", "tomorrow", "final round", "offer", "decision", "deadline"},
			Medium: []string{"this week", "next week", "soon", "technical interview", "onsite", "panel"},
		},
	}
}
