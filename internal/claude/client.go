// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package claude is the completion client for the Anthropic Messages API.
// One request is issued per source paragraph; the response's first text block
// is parsed directly as an interpretation record (JSON mode).
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/peirush/pkg/types"
)

// apiURL is the Messages API endpoint. Package-level var for test substitution.
var apiURL = "https://api.anthropic.com/v1/messages"

// apiVersion is the anthropic-version header value.
const apiVersion = "2023-06-01"

// defaultMaxTokens bounds the generated output when the config leaves it unset.
const defaultMaxTokens = 4096

// Client calls the Messages API. The zero HTTPClient falls back to
// http.DefaultClient.
type Client struct {
	APIKey     string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

// request is the body of a Messages API call.
type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

// message is a single turn in the Messages API conversation.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// response is the body of a Messages API reply.
type response struct {
	Content []contentBlock `json:"content"`
	Usage   types.Usage    `json:"usage"`
}

// contentBlock is one block of generated content.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one paragraph with the system instruction and returns the
// parsed interpretation record plus the call's token usage. The usage is also
// attached to the record so it survives into the persisted result. Transport,
// status, empty-content, and parse failures all surface as a single error;
// the caller decides whether to continue.
func (c *Client) Complete(ctx context.Context, system, paragraph string) (*types.Interpretation, types.Usage, error) {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := request{
		Model:     c.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []message{
			{Role: "user", Content: paragraph},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, types.Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, types.Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, types.Usage{}, fmt.Errorf("calling Messages API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, types.Usage{}, fmt.Errorf("Messages API returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, types.Usage{}, fmt.Errorf("decoding Messages API response: %w", err)
	}

	for _, block := range apiResp.Content {
		if block.Type != "text" {
			continue
		}
		var rec types.Interpretation
		if err := json.Unmarshal([]byte(block.Text), &rec); err != nil {
			return nil, types.Usage{}, fmt.Errorf("parsing interpretation JSON: %w", err)
		}
		u := apiResp.Usage
		rec.Usage = &types.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
		return &rec, u, nil
	}

	return nil, types.Usage{}, fmt.Errorf("no text content in Messages API response")
}
