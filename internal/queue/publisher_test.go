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

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/jobsignal/scanner/internal/models"
)

// --- Mock Redis ---

type pushed struct {
	key   string
	value string
}

type mockRedis struct {
	mu     sync.Mutex
	pushes []pushed
	err    error
}

func (m *mockRedis) LPush(_ context.Context, key string, values ...any) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	for _, v := range values {
		m.pushes = append(m.pushes, pushed{key: key, value: v.(string)})
	}
	return redis.NewIntResult(int64(len(m.pushes)), nil)
}

func (m *mockRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.err)
}

func TestPublisher_PublishResult(t *testing.T) {
	rdb := &mockRedis{}
	p := NewPublisher(rdb, "signals")

	company := "TechCorp"
	result := models.ExtractionResult{
		MessageID: "msg-1",
		Label:     models.LabelInterviewInvite,
		Fields:    models.ExtractedFields{Company: &company},
		Priority:  models.PriorityHigh,
	}

	taskID, err := p.PublishResult(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rdb.pushes) != 1 || rdb.pushes[0].key != "signals" {
		t.Fatalf("pushes = %+v", rdb.pushes)
	}

	var msg celeryMessage
	if err := json.Unmarshal([]byte(rdb.pushes[0].value), &msg); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if msg.Headers["id"] != taskID || msg.Headers["task"] != TaskName {
		t.Errorf("headers = %v", msg.Headers)
	}

	var task celeryTask
	if err := json.Unmarshal([]byte(msg.Body), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if len(task.Args) != 1 {
		t.Fatalf("args = %v", task.Args)
	}
	var back models.ExtractionResult
	if err := json.Unmarshal([]byte(task.Args[0].(string)), &back); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if back.MessageID != "msg-1" || back.Fields.Company == nil || *back.Fields.Company != "TechCorp" {
		t.Errorf("result = %+v", back)
	}
}

func TestPublisher_Error(t *testing.T) {
	rdb := &mockRedis{err: errors.New("READONLY")}
	p := NewPublisher(rdb, "signals")

	if _, err := p.PublishResult(context.Background(), models.ExtractionResult{MessageID: "m"}); err == nil {
		t.Error("expected publish error")
	}
	if err := p.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
}
