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

package mailbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobsignal/scanner/internal/config"
)

// Open builds the Source selected by cfg. A provider whose credentials are
// missing degrades to Unavailable so scans run on synthetic data.
func Open(ctx context.Context, cfg config.MailboxConfig, maxMessages int) (Source, error) {
	var (
		src Source
		err error
	)
	switch cfg.Provider {
	case config.ProviderNone:
		slog.Info("no mailbox provider configured, scans will use synthetic data")
		return Unavailable{}, nil
	case config.ProviderGmail:
		src, err = NewGmailSource(ctx, GmailConfig{
			CredentialsFile: cfg.CredentialsFile,
			TokenFile:       cfg.TokenFile,
			Query:           cfg.Query,
			MaxMessages:     maxMessages,
		})
	case config.ProviderGraph:
		src, err = NewGraphSource(ctx, GraphConfig{
			TenantID:     cfg.TenantID,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			UserID:       cfg.UserID,
			MaxMessages:  maxMessages,
		})
	default:
		return nil, fmt.Errorf("unknown mailbox provider %q", cfg.Provider)
	}

	if errors.Is(err, ErrSourceUnavailable) {
		slog.Warn("mailbox not connected, scans will use synthetic data",
			"provider", cfg.Provider,
			"error", err,
		)
		return Unavailable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s mailbox: %w", cfg.Provider, err)
	}
	return src, nil
}
