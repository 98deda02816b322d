// Package generation calls a hosted or local text-generation model with a
// single user prompt and returns the generated text.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"

	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultOllamaModel    = "llama3.2"
	DefaultMaxTokens      = 4000

	anthropicBaseURL = "https://api.anthropic.com"
	ollamaBaseURL    = "http://localhost:11434"
	anthropicVersion = "2023-06-01"
	defaultTimeout   = 30 * time.Second
)

// CallFunc sends prompt to a model and returns its text response.
type CallFunc func(ctx context.Context, prompt string) (string, error)

// Config holds configuration for creating a CallFunc.
type Config struct {
	Provider  string        // "anthropic" (default) or "ollama"
	Model     string        // e.g. "claude-3-5-sonnet-20241022"
	APIKey    string        // required for anthropic
	BaseURL   string        // override base URL
	MaxTokens int           // anthropic max_tokens, defaults to 4000
	Timeout   time.Duration // per-call bound, defaults to 30s

	HTTPClient *http.Client
}

// SupportedProviders lists the providers NewCaller accepts.
var SupportedProviders = []string{ProviderAnthropic, ProviderOllama}

// NewCaller creates a CallFunc based on the provided configuration.
func NewCaller(cfg Config) (CallFunc, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderAnthropic
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	switch provider {
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, errors.New("anthropic api key is required")
		}
		model := cfg.Model
		if model == "" {
			model = DefaultAnthropicModel
		}
		maxTokens := cfg.MaxTokens
		if maxTokens <= 0 {
			maxTokens = DefaultMaxTokens
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = anthropicBaseURL
		}
		return newAnthropicCaller(client, cfg.APIKey, model, baseURL, maxTokens, timeout), nil

	case ProviderOllama:
		model := cfg.Model
		if model == "" {
			model = DefaultOllamaModel
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = ollamaBaseURL
		}
		return newOllamaCaller(client, model, baseURL, timeout), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// --- Anthropic caller ---

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicCaller(client *http.Client, apiKey, model, baseURL string, maxTokens int, timeout time.Duration) CallFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		data, err := json.Marshal(anthropicRequest{
			Model:     model,
			MaxTokens: maxTokens,
			Messages: []anthropicMessage{
				{Role: "user", Content: prompt},
			},
		})
		if err != nil {
			return "", fmt.Errorf("marshal request: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		body, status, err := send(client, req)
		if err != nil {
			return "", fmt.Errorf("anthropic request: %w", err)
		}

		if status != http.StatusOK {
			return "", fmt.Errorf("anthropic API error (status %d): %s", status, string(body))
		}

		var result anthropicResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}

		if result.Error != nil {
			return "", fmt.Errorf("anthropic error: %s", result.Error.Message)
		}

		for _, block := range result.Content {
			if block.Type == "" || block.Type == "text" {
				return block.Text, nil
			}
		}

		return "", errors.New("anthropic returned no text content")
	}
}

// --- Ollama caller ---

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func newOllamaCaller(client *http.Client, model, baseURL string, timeout time.Duration) CallFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		data, err := json.Marshal(ollamaChatRequest{
			Model: model,
			Messages: []ollamaChatMessage{
				{Role: "user", Content: prompt},
			},
			Stream: false,
		})
		if err != nil {
			return "", fmt.Errorf("marshal request: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/chat", bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		body, status, err := send(client, req)
		if err != nil {
			return "", fmt.Errorf("ollama request: %w", err)
		}

		if status != http.StatusOK {
			return "", fmt.Errorf("ollama API error (status %d): %s", status, string(body))
		}

		var result ollamaChatResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}

		if result.Error != "" {
			return "", fmt.Errorf("ollama error: %s", result.Error)
		}

		if result.Message.Content == "" {
			return "", errors.New("ollama returned no content")
		}

		return result.Message.Content, nil
	}
}

func send(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
