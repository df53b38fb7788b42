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
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jobsignal/scanner/internal/models"
)

// GmailConfig points at the OAuth2 client credentials and the stored user
// token produced by a one-time consent flow.
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	Query           string
	MaxMessages     int
}

// GmailSource lists messages from the authenticated user's Gmail account.
type GmailSource struct {
	svc         *gmail.Service
	query       string
	maxMessages int64
}

// NewGmailSource builds a Gmail source with a read-only scope. A missing
// credentials or token file yields ErrSourceUnavailable: the server never
// runs the interactive consent flow.
func NewGmailSource(ctx context.Context, cfg GmailConfig) (*GmailSource, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("gmail credentials %s: %w", cfg.CredentialsFile, ErrSourceUnavailable)
		}
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("gmail token %s: %w", cfg.TokenFile, ErrSourceUnavailable)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail client: %w", err)
	}
	return NewGmailSourceWithService(svc, cfg.Query, cfg.MaxMessages), nil
}

// NewGmailSourceWithService wraps an existing Gmail service.
func NewGmailSourceWithService(svc *gmail.Service, query string, maxMessages int) *GmailSource {
	if maxMessages <= 0 {
		maxMessages = 100
	}
	return &GmailSource{svc: svc, query: query, maxMessages: int64(maxMessages)}
}

func (g *GmailSource) Name() string { return "gmail" }

// Fetch lists messages matching the configured query received after since
// and retrieves each in full. A message that fails to load is skipped.
func (g *GmailSource) Fetch(ctx context.Context, since time.Time) ([]models.RawMessage, error) {
	q := strings.TrimSpace(fmt.Sprintf("%s after:%d", g.query, since.Unix()))

	var ids []string
	pageToken := ""
	for int64(len(ids)) < g.maxMessages {
		call := g.svc.Users.Messages.List("me").Q(q).MaxResults(g.maxMessages - int64(len(ids)))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("list gmail messages: %w", classifyGmailError(err))
		}
		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	msgs := make([]models.RawMessage, 0, len(ids))
	for _, id := range ids {
		msg, err := g.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("gmail: fetch message failed", "message_id", id, "error", err)
			continue
		}
		msgs = append(msgs, parseGmailMessage(msg))
	}

	slog.Info("gmail mailbox fetched", "query", q, "messages", len(msgs))
	return msgs, nil
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// classifyGmailError maps token failures to ErrSourceUnavailable.
func classifyGmailError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return err
}

// parseGmailMessage converts a full-format Gmail message into a RawMessage,
// preferring the text/plain body over text/html.
func parseGmailMessage(msg *gmail.Message) models.RawMessage {
	rm := models.RawMessage{ID: msg.Id}
	if msg.InternalDate > 0 {
		rm.ReceivedAt = time.UnixMilli(msg.InternalDate).UTC()
	}
	if msg.Payload == nil {
		rm.Body = msg.Snippet
		return rm
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			rm.Subject = h.Value
		case "from":
			rm.SenderAddress, rm.SenderName = parseFrom(h.Value)
		}
	}

	html, text := parseBody(msg.Payload)
	switch {
	case strings.TrimSpace(text) != "":
		rm.Body = text
	case html != "":
		rm.Body = html
	default:
		rm.Body = msg.Snippet
	}
	return rm
}

// parseFrom splits a From header into address and display name.
func parseFrom(value string) (address, name string) {
	if addr, err := mail.ParseAddress(value); err == nil {
		return addr.Address, addr.Name
	}
	value = strings.TrimSpace(value)
	if i := strings.LastIndex(value, "<"); i >= 0 && strings.HasSuffix(value, ">") {
		return value[i+1 : len(value)-1], strings.Trim(strings.TrimSpace(value[:i]), `"`)
	}
	return value, ""
}

// parseBody walks the MIME tree and returns the first html and text parts.
func parseBody(payload *gmail.MessagePart) (html, text string) {
	if payload == nil {
		return "", ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		switch payload.MimeType {
		case "text/html":
			html = decodeBase64URL(payload.Body.Data)
		case "text/plain":
			text = decodeBase64URL(payload.Body.Data)
		}
	}

	for _, part := range payload.Parts {
		h, t := parseBody(part)
		if html == "" && h != "" {
			html = h
		}
		if text == "" && t != "" {
			text = t
		}
	}
	return html, text
}

// decodeBase64URL accepts padded and unpadded base64url data.
func decodeBase64URL(s string) string {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return string(data)
	}
	if data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "=")); err == nil {
		return string(data)
	}
	return ""
}
