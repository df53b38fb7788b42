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

// JobSignal Scanner: Server
//
// Entry point for the interview signal scanner. It:
//  1. Loads configuration from config.yaml and the environment
//  2. Compiles the classification and extraction rules
//  3. Connects to PostgreSQL and Redis
//  4. Opens the configured mailbox (or runs on synthetic data without one)
//  5. Scans the mailbox periodically, storing and publishing new results
//  6. Serves the scan API
//  7. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jobsignal/scanner/internal/api"
	"github.com/jobsignal/scanner/internal/config"
	"github.com/jobsignal/scanner/internal/dedup"
	"github.com/jobsignal/scanner/internal/engine"
	"github.com/jobsignal/scanner/internal/mailbox"
	"github.com/jobsignal/scanner/internal/queue"
	"github.com/jobsignal/scanner/internal/rules"
	"github.com/jobsignal/scanner/internal/scan"
	"github.com/jobsignal/scanner/internal/store"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting jobsignal scanner")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"mailbox", cfg.Mailbox.Provider,
		"scan_interval", cfg.ScanInterval,
		"lookback", cfg.Lookback,
		"workers", cfg.Workers,
	)

	// --- Rules ---
	rs, err := rules.LoadSet(cfg.RulesPath)
	if err != nil {
		slog.Error("failed to load rules", "path", cfg.RulesPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	results, err := store.New(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise result store", "error", err)
		os.Exit(1)
	}

	// --- Connect to Redis ---
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	publisher := queue.NewPublisher(rdb, cfg.ResultsQueue)
	if err := publisher.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to Redis")

	filter := dedup.NewFilter(rdb, 0)

	// --- Mailbox ---
	source, err := mailbox.Open(ctx, cfg.Mailbox, cfg.MaxMessages)
	if err != nil {
		slog.Error("failed to open mailbox", "error", err)
		os.Exit(1)
	}

	// --- Engine and Scan Loop ---
	eng := engine.New(rs, engine.Options{
		Workers:      cfg.Workers,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	runner := scan.NewRunner(scan.Config{
		Source:    source,
		Engine:    eng,
		Store:     results,
		Publisher: publisher,
		Dedup:     filter,
		Interval:  cfg.ScanInterval,
		Lookback:  cfg.Lookback,
	})
	runner.Start(ctx)

	// --- API Server ---
	handler := api.NewHandler(eng, runner, results,
		api.HealthCheck{Name: "postgres", Ping: results.Ping},
		api.HealthCheck{Name: "redis", Ping: publisher.Ping},
	)
	ready, err := api.Serve(ctx, cfg.Port, handler)
	if err != nil {
		slog.Error("failed to start api server", "error", err)
		os.Exit(1)
	}
	<-ready

	// --- Graceful Shutdown ---
	<-ctx.Done()
	slog.Info("received shutdown signal")
	runner.Stop()

	slog.Info("jobsignal scanner stopped")
}
