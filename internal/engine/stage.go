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

package engine

import "fmt"

// Stage is a step in a message's pass through the pipeline.
type Stage int

const (
	StageAwaitingInput Stage = iota
	StageNormalizing
	StageClassifying
	StageExtracting
	StageScoring
	StageDone
)

var stageNames = [...]string{
	StageAwaitingInput: "awaiting_input",
	StageNormalizing:   "normalizing",
	StageClassifying:   "classifying",
	StageExtracting:    "extracting",
	StageScoring:       "scoring",
	StageDone:          "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// tracker enforces that a message moves forward exactly one stage at a time.
type tracker struct {
	id      string
	stage   Stage
	observe func(id string, s Stage)
}

func (t *tracker) advance(next Stage) {
	if next != t.stage+1 {
		panic(fmt.Sprintf("illegal stage transition %s -> %s", t.stage, next))
	}
	t.stage = next
	if t.observe != nil {
		t.observe(t.id, next)
	}
}
