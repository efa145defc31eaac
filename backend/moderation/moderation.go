// Package moderation calls an external text classification endpoint
// before user-authored text is persisted. The gate fails open: content
// is only ever blocked by an explicit flagged classification, never by
// a missing key, a transport error or a non-200 response.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"muschats/backend/config"
)

type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

type request struct {
	Input string `json:"input"`
}

type response struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// Result of a moderation check. Reason is empty when the text is safe.
type Result struct {
	Safe   bool
	Reason string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		url:    cfg.ModerationAPIURL,
		apiKey: cfg.ModerationAPIKey,
	}
}

// Check classifies text. Any infrastructure failure yields Safe=true.
func (m *Client) Check(ctx context.Context, text string) Result {
	if m.url == "" || m.apiKey == "" {
		return Result{Safe: true}
	}

	body, err := json.Marshal(request{Input: text})
	if err != nil {
		return Result{Safe: true}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return Result{Safe: true}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return Result{Safe: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Safe: true}
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{Safe: true}
	}

	for _, result := range parsed.Results {
		if !result.Flagged {
			continue
		}
		var flagged []string
		for name, on := range result.Categories {
			if on {
				flagged = append(flagged, name)
			}
		}
		sort.Strings(flagged)
		return Result{Safe: false, Reason: strings.Join(flagged, ", ")}
	}

	return Result{Safe: true}
}
