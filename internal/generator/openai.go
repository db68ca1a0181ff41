package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lectern-dev/lectern/shared/config"
	"github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/logger"
)

const defaultTimeout = 120 * time.Second

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	baseUrl    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAI(cfg config.Generator, apiKey string) *OpenAI {
	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &OpenAI{
		baseUrl:    baseUrl,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate makes a single request. Any non-2xx status or malformed body is
// a hard failure; the raw upstream error stays in the logs and never
// reaches the caller's response.
func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.Error("text generator request failed", "err", err)
		return "", errors.Upstream("text generator")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		logger.Log.Error("reading generator response failed", "err", err)
		return "", errors.Upstream("text generator")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Log.Error("text generator returned error", "status", resp.StatusCode, "body", string(body))
		return "", errors.Upstream("text generator")
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		logger.Log.Error("text generator returned malformed response", "err", err)
		return "", errors.Upstream("text generator")
	}

	return parsed.Choices[0].Message.Content, nil
}
