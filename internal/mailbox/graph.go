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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/jobsignal/scanner/internal/models"
)

// GraphBaseURL is the Microsoft Graph v1.0 endpoint.
const GraphBaseURL = "https://graph.microsoft.com/v1.0"

// GraphConfig holds app-only credentials for a Microsoft 365 tenant.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	UserID       string
	BaseURL      string
	MaxMessages  int
}

// GraphSource lists messages from a single user's mailbox via Microsoft Graph.
type GraphSource struct {
	httpClient   *http.Client
	graphBaseURL string
	userID       string
	maxMessages  int
}

// NewGraphSource builds a Graph source using the client-credentials flow.
// It returns ErrSourceUnavailable when credentials are missing.
func NewGraphSource(ctx context.Context, cfg GraphConfig) (*GraphSource, error) {
	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.UserID == "" {
		return nil, fmt.Errorf("graph credentials incomplete: %w", ErrSourceUnavailable)
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}
	return NewGraphSourceWithClient(creds.Client(ctx), cfg.BaseURL, cfg.UserID, cfg.MaxMessages), nil
}

// NewGraphSourceWithClient creates a Graph source over an already
// authenticated HTTP client.
func NewGraphSourceWithClient(httpClient *http.Client, baseURL, userID string, maxMessages int) *GraphSource {
	if baseURL == "" {
		baseURL = GraphBaseURL
	}
	if maxMessages <= 0 {
		maxMessages = 100
	}
	return &GraphSource{
		httpClient:   httpClient,
		graphBaseURL: baseURL,
		userID:       userID,
		maxMessages:  maxMessages,
	}
}

func (g *GraphSource) Name() string { return "graph" }

// messagesResponse represents a page of the /messages list response.
type messagesResponse struct {
	Value    []graphMessage `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

// graphMessage represents the relevant fields from a Graph API message.
type graphMessage struct {
	ID               string `json:"id"`
	Subject          string `json:"subject"`
	ReceivedDateTime string `json:"receivedDateTime"`
	From             struct {
		EmailAddress struct {
			Address string `json:"address"`
			Name    string `json:"name"`
		} `json:"emailAddress"`
	} `json:"from"`
	Body struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
}

// Fetch pages through the user's messages newest first until the lookback
// window or the message cap is reached.
func (g *GraphSource) Fetch(ctx context.Context, since time.Time) ([]models.RawMessage, error) {
	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("receivedDateTime ge %s", since.UTC().Format(time.RFC3339)))
	params.Set("$select", "id,subject,from,body,receivedDateTime")
	params.Set("$orderby", "receivedDateTime desc")
	params.Set("$top", "50")

	listURL := fmt.Sprintf("%s/users/%s/messages?%s", g.graphBaseURL, url.PathEscape(g.userID), params.Encode())

	var msgs []models.RawMessage
	pageCount := 0
	for nextURL := listURL; nextURL != "" && len(msgs) < g.maxMessages; {
		page, err := g.fetchPage(ctx, nextURL)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pageCount, err)
		}
		pageCount++

		for _, m := range page.Value {
			msgs = append(msgs, parseGraphMessage(m))
			if len(msgs) == g.maxMessages {
				break
			}
		}
		nextURL = page.NextLink
	}

	slog.Info("graph mailbox fetched",
		"user", g.userID,
		"messages", len(msgs),
		"pages", pageCount,
	)
	return msgs, nil
}

// fetchPage retrieves a single page of messages from the list endpoint.
func (g *GraphSource) fetchPage(ctx context.Context, pageURL string) (*messagesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Add("Prefer", "odata.maxpagesize=50")
	req.Header.Add("Prefer", `outlook.body-content-type="text"`)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch messages page: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("messages list returned HTTP %d: %w", resp.StatusCode, ErrSourceUnavailable)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("messages list error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("messages list returned HTTP %d", resp.StatusCode)
	}

	var page messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode messages response: %w", err)
	}
	return &page, nil
}

// parseGraphMessage converts a Graph API message into a RawMessage. An
// unparseable receivedDateTime leaves ReceivedAt zero.
func parseGraphMessage(msg graphMessage) models.RawMessage {
	received, _ := time.Parse(time.RFC3339, msg.ReceivedDateTime)
	return models.RawMessage{
		ID:            msg.ID,
		Subject:       msg.Subject,
		SenderAddress: msg.From.EmailAddress.Address,
		SenderName:    msg.From.EmailAddress.Name,
		Body:          msg.Body.Content,
		ReceivedAt:    received.UTC(),
	}
}
