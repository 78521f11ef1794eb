// Package wiki fetches short topic summaries from the Wikipedia REST API.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://en.wikipedia.org/api/rest_v1/page/summary/"

type Client struct {
	baseURL string
	http    *http.Client
}

func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: defaultBaseURL, http: httpClient}
}

type summaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Type    string `json:"type"`
}

// Summary returns the first couple of sentences about topic, or a spoken
// miss when Wikipedia has no page for it.
func (c *Client) Summary(ctx context.Context, topic string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.PathEscape(title), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call wikipedia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("I couldn't find anything on Wikipedia about %s.", topic), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia returned %d", resp.StatusCode)
	}

	var body summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}

	if body.Type == "disambiguation" || body.Extract == "" {
		return fmt.Sprintf("%s could mean several things. Can you be more specific?", topic), nil
	}

	return clip(body.Extract, 2), nil
}

// clip keeps the first n sentences so the spoken answer stays short.
func clip(text string, n int) string {
	count := 0
	for i, r := range text {
		if r != '.' {
			continue
		}
		// skip decimals like "3.14"
		if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' {
			continue
		}
		count++
		if count == n {
			return text[:i+1]
		}
	}
	return text
}
