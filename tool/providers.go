package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Default provider endpoints.
const (
	defaultSerpAPIBaseURL   = "https://serpapi.com"
	defaultReplicateBaseURL = "https://api.replicate.com"
)

// serpAPIClient calls the SerpAPI Google engine for live web search.
type serpAPIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func newSerpAPIClient(apiKey, baseURL string, client *http.Client) *serpAPIClient {
	if baseURL == "" {
		baseURL = defaultSerpAPIBaseURL
	}
	return &serpAPIClient{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

// configured reports whether live search can be attempted.
func (c *serpAPIClient) configured() bool { return c.apiKey != "" }

// search returns up to num organic results for query.
func (c *serpAPIClient) search(ctx context.Context, query string, num int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("api_key", c.apiKey)
	q.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode)
	}

	var payload struct {
		OrganicResults []struct {
			Title    string `json:"title"`
			Link     string `json:"link"`
			Snippet  string `json:"snippet"`
			Position int    `json:"position"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}

	organic := payload.OrganicResults
	if len(organic) > num {
		organic = organic[:num]
	}
	results := make([]map[string]any, 0, len(organic))
	for _, item := range organic {
		results = append(results, map[string]any{
			"title":    item.Title,
			"link":     item.Link,
			"snippet":  item.Snippet,
			"position": item.Position,
		})
	}
	return results, nil
}

// replicateClient creates predictions on Replicate for live image generation.
// Replicate normally requires polling; the prediction payload (with its id)
// is returned for a higher layer to poll.
type replicateClient struct {
	token   string
	model   string
	baseURL string
	http    *http.Client
}

func newReplicateClient(token, model, baseURL string, client *http.Client) *replicateClient {
	if baseURL == "" {
		baseURL = defaultReplicateBaseURL
	}
	return &replicateClient{token: token, model: model, baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

func (c *replicateClient) configured() bool { return c.token != "" && c.model != "" }

func (c *replicateClient) predict(ctx context.Context, prompt string) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"version": c.model,
		"input":   map[string]any{"prompt": prompt},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate status %d", resp.StatusCode)
	}

	var prediction map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("decode replicate response: %w", err)
	}
	return prediction, nil
}

// libreTranslateClient calls a LibreTranslate instance for live translation.
type libreTranslateClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newLibreTranslateClient(baseURL, apiKey string, client *http.Client) *libreTranslateClient {
	return &libreTranslateClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: client}
}

func (c *libreTranslateClient) configured() bool { return c.baseURL != "" }

func (c *libreTranslateClient) translate(ctx context.Context, text, target string) (string, error) {
	payload := map[string]any{
		"q":      text,
		"source": "auto",
		"target": target,
		"format": "text",
	}
	if c.apiKey != "" {
		payload["api_key"] = c.apiKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("libretranslate status %d", resp.StatusCode)
	}

	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode libretranslate response: %w", err)
	}
	return out.TranslatedText, nil
}

// doRequest issues a generic HTTP request for the api_integration tool,
// returning status and a truncated body.
func doRequest(ctx context.Context, client *http.Client, method, endpoint string, payload map[string]any) (int, string, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, "", err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), endpoint, body)
	if err != nil {
		return 0, "", err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2000))
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(data), nil
}
