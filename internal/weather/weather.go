// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "log/slog"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New builds a client for the given API key. A nil httpClient gets a
// 10 second timeout default.
func New(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, http: httpClient}
}

type apiResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Cod json.Number `json:"cod"`
}

// Current returns a spoken weather report for city.
func (c *Client) Current(ctx context.Context, city string) (string, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(city))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call weather API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("I couldn't find weather for %s.", city), nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Error("Weather API failure", "status", resp.StatusCode, "city", city)
		return "", fmt.Errorf("weather API returned %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode weather response: %w", err)
	}

	description := "unknown conditions"
	if len(body.Weather) > 0 {
		description = body.Weather[0].Description
	}

	return fmt.Sprintf(
		"The weather in %s is %s with a temperature of %.0f degrees Celsius, feels like %.0f, and humidity of %d percent.",
		body.Name, description, body.Main.Temp, body.Main.FeelsLike, body.Main.Humidity,
	), nil
}
