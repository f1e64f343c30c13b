package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openRouterBaseURL = "https://openrouter.ai/api"

type OpenRouterConfig struct {
	APIKey      string
	Model       string
	SiteURL     string // sent as HTTP-Referer
	SiteName    string // sent as X-Title
	Temperature float64
	MaxTokens   int
}

// OpenRouter talks to the OpenAI-compatible chat completions endpoint.
type OpenRouter struct {
	cfg     OpenRouterConfig
	baseURL string
	client  *http.Client
}

func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	return &OpenRouter{
		cfg:     cfg,
		baseURL: openRouterBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// SetTestTransport points the client at a test server.
func (o *OpenRouter) SetTestTransport(url string) {
	o.baseURL = url
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (o *OpenRouter) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	if o.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", o.cfg.SiteURL)
	}
	if o.cfg.SiteName != "" {
		req.Header.Set("X-Title", o.cfg.SiteName)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(data))
	}

	var result chatResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("api error %d: %s", result.Error.Code, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}

	return result.Choices[0].Message.Content, nil
}
