// Package search implements the web-search collaborator exposed to the AI
// as a tool. It speaks the serper.dev JSON API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tszkin/gabbot/internal/config"
)

// timeRangeCodes maps the tool's time_range argument to the API's tbs codes.
var timeRangeCodes = map[string]string{
	"h": "qdr:h",
	"d": "qdr:d",
	"w": "qdr:w",
	"m": "qdr:m",
	"y": "qdr:y",
}

// Client calls the search API. A client without an API key is disabled and
// the search tool is never offered to the model.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a search client from configuration.
func NewClient(cfg config.SearchConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger.With("component", "search_client"),
	}
}

// Enabled reports whether the collaborator is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	Query    string `json:"q"`
	Num      int    `json:"num"`
	Location string `json:"location,omitempty"`
	GL       string `json:"gl,omitempty"`
	HL       string `json:"hl,omitempty"`
	TBS      string `json:"tbs,omitempty"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

type knowledgeGraph struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type searchResponse struct {
	Organic        []organicResult `json:"organic"`
	KnowledgeGraph *knowledgeGraph `json:"knowledgeGraph"`
}

// Search runs a web search and returns the results as a text block for the
// model. timeRange is one of "h", "d", "w", "m", "y" or empty for no limit.
func (c *Client) Search(ctx context.Context, query, timeRange string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("search client is not configured")
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}

	reqBody := searchRequest{
		Query: query,
		Num:   5,
		GL:    "hk",
		HL:    "zh-tw",
	}
	if tbs, ok := timeRangeCodes[timeRange]; ok {
		reqBody.TBS = tbs
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugContext(ctx, "Running web search", "query_preview", truncate(query, 50), "time_range", timeRange)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WarnContext(ctx, "Failed to close search response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	return FormatResults(parsed.Organic, parsed.KnowledgeGraph), nil
}

// FormatResults renders parsed results into the text block handed to the model.
func FormatResults(organic []organicResult, kg *knowledgeGraph) string {
	var sb strings.Builder

	if kg != nil && kg.Title != "" {
		fmt.Fprintf(&sb, "%s (%s): %s\n\n", kg.Title, kg.Type, kg.Description)
	}

	for i, r := range organic {
		fmt.Fprintf(&sb, "%d. %s\n%s\n", i+1, r.Title, r.Snippet)
		if r.Date != "" {
			fmt.Fprintf(&sb, "(%s)\n", r.Date)
		}
		fmt.Fprintf(&sb, "%s\n\n", r.Link)
	}

	if sb.Len() == 0 {
		return "搵唔到相關結果"
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
