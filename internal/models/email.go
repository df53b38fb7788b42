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

// Package models defines the data structures shared across the scanner.
package models

import "time"

// RawMessage is an email as supplied by a mailbox source, already decoded to
// text. The pipeline treats it as read-only.
type RawMessage struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	SenderAddress string    `json:"sender_address"`
	SenderName    string    `json:"sender_name"`
	Body          string    `json:"body"`
	ReceivedAt    time.Time `json:"received_at"`
}

// NormalizedMessage is the cleaned form of a RawMessage. The original casing
// is kept for proper-noun extraction; the lower-cased copies are for matching.
type NormalizedMessage struct {
	Source            string
	CleanSubject      string
	CleanSubjectLower string
	CleanBody         string
	CleanBodyLower    string
}
