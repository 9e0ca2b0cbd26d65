// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/chat"
	"github.com/hpungsan/shelldash/internal/logging"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 60 * time.Second
	Temperature    = 0.7

	// NoKeyReply is returned instead of calling the API when no key is configured.
	NoKeyReply = "(No API key configured. Set OPENAI_API_KEY env var or config.json openai.api_key)"

	maxErrorBody = 512
)

// Client is a chat.Completer backed by HTTP.
type Client struct {
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Client with DefaultTimeout. A nil logger disables logging.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logging.OrNop(logger),
	}
}

type completionRequest struct {
	Model       string         `json:"model"`
	Messages    []chat.Message `json:"messages"`
	Temperature float64        `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete returns the first choice's content. It never fails: a missing key
// yields NoKeyReply and any other failure yields "(OpenAI error: <err>)".
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) string {
	if req.APIKey == "" {
		return NoKeyReply
	}

	start := time.Now()
	reply, err := c.complete(ctx, req)
	if err != nil {
		c.logger.Warn("chat completion failed",
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Sprintf("(OpenAI error: %v)", err)
	}
	c.logger.Debug("chat completion",
		zap.String("model", req.Model),
		zap.Duration("elapsed", time.Since(start)))
	return reply
}

func (c *Client) complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	baseURL := strings.TrimRight(req.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			return "", fmt.Errorf("status %s", resp.Status)
		}
		return "", fmt.Errorf("status %s: %s", resp.Status, msg)
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}
