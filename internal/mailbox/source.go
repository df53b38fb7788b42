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

// Package mailbox supplies RawMessages to the scanner from a connected mail
// account (Gmail or Microsoft Graph) or from a JSON file.
package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jobsignal/scanner/internal/models"
)

// ErrSourceUnavailable means no usable mailbox is connected: credentials are
// missing or were rejected. Callers fall back to synthetic data.
var ErrSourceUnavailable = errors.New("mailbox source unavailable")

// Source fetches messages received at or after since.
type Source interface {
	Name() string
	Fetch(ctx context.Context, since time.Time) ([]models.RawMessage, error)
}

// Unavailable is a Source that always reports ErrSourceUnavailable. It stands
// in when no provider is configured.
type Unavailable struct{}

func (Unavailable) Name() string { return "none" }

func (Unavailable) Fetch(context.Context, time.Time) ([]models.RawMessage, error) {
	return nil, ErrSourceUnavailable
}

// FileSource reads a JSON array of RawMessages from disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the JSON file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Name() string { return "file" }

// Fetch returns the file's messages received at or after since, newest
// first. Messages without a timestamp are always included.
func (f *FileSource) Fetch(ctx context.Context, since time.Time) ([]models.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", f.path, ErrSourceUnavailable)
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	msgs, err := DecodeMessages(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}

	kept := msgs[:0]
	for _, m := range msgs {
		if m.ReceivedAt.IsZero() || !m.ReceivedAt.Before(since) {
			kept = append(kept, m)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ReceivedAt.After(kept[j].ReceivedAt)
	})
	return kept, nil
}

// DecodeMessages parses a JSON array of RawMessages. Empty input and a JSON
// null both decode to an empty batch.
func DecodeMessages(data []byte) ([]models.RawMessage, error) {
	var msgs []models.RawMessage
	if len(bytes.TrimSpace(data)) == 0 {
		return msgs, nil
	}
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
