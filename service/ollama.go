package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/summarizer"
)

// ollamaClient talks to a local Ollama service over its chat API.
type ollamaClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOllamaClient(baseURL string, timeout time.Duration) *ollamaClient {
	return &ollamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// flattenMessages merges the chat exchange into a single role-tagged prompt;
// local models respond better to one user turn than to a synthetic history.
func flattenMessages(messages []model.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", strings.ToUpper(m.Role), m.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Chat posts the flattened exchange and extracts the reply text.
func (c *ollamaClient) Chat(ctx context.Context, messages []model.Message, opts summarizer.ChatOptions) (string, error) {
	reqBody := ollamaChatRequest{
		Model: opts.Model,
		Messages: []ollamaMessage{
			{Role: model.RoleUser, Content: flattenMessages(messages)},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}

	return result.Message.Content, nil
}
