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

// JobSignal Scanner: One-shot Scan Command
//
// Scans a JSON file of messages, the configured mailbox, or (with neither)
// the synthetic fallback batch, and prints the results as JSON. Nothing is
// stored or published.
//
// Usage:
//
//	go run ./cmd/scan/ [--input messages.json | --mailbox] [--since 168h] [--rules rules.yaml]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobsignal/scanner/internal/config"
	"github.com/jobsignal/scanner/internal/engine"
	"github.com/jobsignal/scanner/internal/mailbox"
	"github.com/jobsignal/scanner/internal/models"
	"github.com/jobsignal/scanner/internal/rules"
)

func main() {
	// Logs go to stderr so stdout carries only the results.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	inputFlag := flag.String("input", "", "JSON file holding an array of messages")
	mailboxFlag := flag.Bool("mailbox", false, "Scan the configured mailbox instead of a file")
	sinceFlag := flag.String("since", "168h", "Lookback duration for --mailbox")
	rulesFlag := flag.String("rules", "", "Rules YAML merged over the built-in rules")
	workersFlag := flag.Int("workers", 0, "Concurrent messages (0 = CPU count)")
	flag.Parse()

	if *inputFlag != "" && *mailboxFlag {
		fmt.Fprintf(os.Stderr, "Error: --input and --mailbox are mutually exclusive\n\n")
		flag.Usage()
		os.Exit(1)
	}

	since, err := time.ParseDuration(*sinceFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --since duration %q: %v\n", *sinceFlag, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var source mailbox.Source = mailbox.Unavailable{}
	var from time.Time
	rulesPath := *rulesFlag
	maxBody := 0

	switch {
	case *inputFlag != "":
		source = mailbox.NewFileSource(*inputFlag)
	case *mailboxFlag:
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: load configuration: %v\n", err)
			os.Exit(1)
		}
		if source, err = mailbox.Open(ctx, cfg.Mailbox, cfg.MaxMessages); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if rulesPath == "" {
			rulesPath = cfg.RulesPath
		}
		from = time.Now().Add(-since)
		maxBody = cfg.MaxBodyBytes
	}

	rs, err := rules.LoadSet(rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	msgs, err := fetch(ctx, source, from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(rs, engine.Options{Workers: *workersFlag, MaxBodyBytes: maxBody})
	results := eng.Scan(msgs)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write results: %v\n", err)
		os.Exit(1)
	}
}

// fetch reads messages from source. An unavailable source yields an empty
// batch, which the engine answers with synthetic data.
func fetch(ctx context.Context, source mailbox.Source, from time.Time) ([]models.RawMessage, error) {
	msgs, err := source.Fetch(ctx, from)
	if errors.Is(err, mailbox.ErrSourceUnavailable) {
		slog.Warn("no messages available, scanning synthetic data", "source", source.Name(), "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", source.Name(), err)
	}
	return msgs, nil
}
