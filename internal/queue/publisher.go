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

// Package queue publishes extraction results to Redis as Celery-compatible
// tasks for the calendar and interview-prep workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jobsignal/scanner/internal/models"
)

// TaskName is the Celery task that consumes interview signals.
const TaskName = "signals.tasks.handle_signal"

// Redis is the subset of *redis.Client the publisher needs.
type Redis interface {
	LPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Publisher sends extraction results to Redis in Celery task format.
type Publisher struct {
	rdb       Redis
	queueName string
}

// NewPublisher creates a new Redis publisher targeting the specified queue.
func NewPublisher(rdb Redis, queueName string) *Publisher {
	return &Publisher{
		rdb:       rdb,
		queueName: queueName,
	}
}

// celeryTask represents a Celery-compatible task message.
type celeryTask struct {
	ID      string  `json:"id"`
	Task    string  `json:"task"`
	Args    []any   `json:"args"`
	Kwargs  any     `json:"kwargs"`
	Retries int     `json:"retries"`
	ETA     *string `json:"eta"`
}

// celeryMessage wraps a task for Redis transport.
type celeryMessage struct {
	Body            string         `json:"body"`
	ContentEncoding string         `json:"content-encoding"`
	ContentType     string         `json:"content-type"`
	Headers         map[string]any `json:"headers"`
	Properties      map[string]any `json:"properties"`
}

// PublishResult serialises an extraction result and pushes it as a Celery
// task. It returns the generated task ID.
func (p *Publisher) PublishResult(ctx context.Context, result models.ExtractionResult) (string, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal extraction result: %w", err)
	}

	taskID := uuid.New().String()

	task := celeryTask{
		ID:     taskID,
		Task:   TaskName,
		Args:   []any{string(resultJSON)},
		Kwargs: map[string]any{},
	}
	taskBody, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("marshal celery task: %w", err)
	}

	msg := celeryMessage{
		Body:            string(taskBody),
		ContentEncoding: "utf-8",
		ContentType:     "application/json",
		Headers: map[string]any{
			"lang":    "py",
			"task":    TaskName,
			"id":      taskID,
			"retries": 0,
		},
		Properties: map[string]any{
			"correlation_id": taskID,
			"delivery_mode":  2,
			"delivery_tag":   taskID,
			"body_encoding":  "utf-8",
			"exchange":       p.queueName,
			"routing_key":    p.queueName,
			"delivery_info": map[string]string{
				"exchange":    p.queueName,
				"routing_key": p.queueName,
			},
		},
	}
	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal celery message: %w", err)
	}

	if err := p.rdb.LPush(ctx, p.queueName, string(msgJSON)).Err(); err != nil {
		return "", fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.Debug("published extraction result",
		"task_id", taskID,
		"message_id", result.MessageID,
		"label", result.Label,
		"queue", p.queueName,
	)
	return taskID, nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
