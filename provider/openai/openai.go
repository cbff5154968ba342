package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ideaforge/config"
)

const (
	openaiAPIURL = "https://api.openai.com/v1/chat/completions"
)

// client speaks the chat completions wire format. The same request and
// response shapes serve both the public OpenAI API and Azure OpenAI
// deployments; only the endpoint and auth header differ.
type client struct {
	endpoint    string
	authHeader  string
	authValue   string
	model       string // empty on azure, the deployment picks the model
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request represents a chat completions request
type request struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// response represents a chat completions response
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a completion client for the configured provider.
func NewClient(cfg config.LLMConfig) (*client, error) {
	c := &client{
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
	switch cfg.Provider {
	case "openai":
		c.endpoint = cfg.OpenAI.BaseURL
		if c.endpoint == "" {
			c.endpoint = openaiAPIURL
		}
		c.authHeader = "Authorization"
		c.authValue = "Bearer " + cfg.OpenAI.APIKey
		c.model = cfg.OpenAI.Model
	case "azure":
		c.endpoint = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimRight(cfg.Azure.Endpoint, "/"), cfg.Azure.Deployment, cfg.Azure.APIVersion)
		c.authHeader = "api-key"
		c.authValue = cfg.Azure.APIKey
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
	return c, nil
}

// Complete sends a system+user message pair and returns the assistant's
// text. One round trip, no retries.
func (c *client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	return c.sendRequest(ctx, messages)
}

func (c *client) sendRequest(ctx context.Context, messages []Message) (string, error) {
	reqBody := request{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.authHeader, c.authValue)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var result response
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return result.Choices[0].Message.Content, nil
}
