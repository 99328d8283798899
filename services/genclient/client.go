// Package genclient issues a single best-effort request to a
// chat-completion endpoint. No retries, no backoff, no caching: callers
// own any retry policy.
package genclient

import (
	"context"
	"errors"
	"fmt"
	"net"

	"chronobot-controlplane/pkg/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FailureKind classifies a generation failure. All kinds surface to the
// end user uniformly as "generation failed"; the task stays pending.
type FailureKind string

const (
	KindConfiguration     FailureKind = "configuration"
	KindTimeout           FailureKind = "timeout"
	KindConnectionError   FailureKind = "connection_error"
	KindApiError          FailureKind = "api_error"
	KindMalformedResponse FailureKind = "malformed_response"
)

type GenerationError struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Kind)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ErrMissingAPIKey makes client construction fail fast when the bearer
// credential is absent from process configuration.
var ErrMissingAPIKey = &GenerationError{
	Kind:   KindConfiguration,
	Detail: "OPENROUTER_API_KEY не настроен. Добавьте ключ в переменные окружения или создайте файл .env",
}

// Generator produces raw model text for a task description.
type Generator interface {
	Generate(ctx context.Context, description string) (string, error)
}

const promptTemplate = `Ты опытный фронтенд-разработчик. Сгенерируй чистый, валидный HTML/CSS/JS код.

ТЗ: %s

Требования к коду:
- Современный HTML5 с семантической разметкой
- CSS3 с Flexbox/Grid, адаптивный дизайн
- Минимальный JavaScript только по необходимости
- Красивый современный UI
- Mobile-friendly верстка

Верни ТОЛЬКО готовый HTML файл с CSS внутри <style> и JS внутри <script>.
Не добавляй пояснения, комментарии или markdown разметку.`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
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

type Client struct {
	http        *resty.Client
	model       string
	maxTokens   int
	temperature float64
	topP        float64
}

type Params struct {
	fx.In
	Cfg *config.Config
}

func NewClient(p Params) (*Client, error) {
	cfg := p.Cfg.OpenRouter
	if cfg.ApiKey == "" {
		zap.L().Error("OPENROUTER_API_KEY не найден в переменных окружения")
		return nil, ErrMissingAPIKey
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.ApiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", cfg.Referer).
		SetHeader("X-Title", cfg.Title)

	return &Client{
		http:        http,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}, nil
}

// Generate makes exactly one synchronous call to the chat-completion
// endpoint and returns the first completion's message content.
func (c *Client) Generate(ctx context.Context, description string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, description)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	zap.L().Info("sending generation request", zap.String("model", c.model))

	var result chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return "", classifyTransportError(err)
	}

	zap.L().Info("generation response received", zap.Int("status", resp.StatusCode()))

	if resp.IsError() {
		return "", &GenerationError{
			Kind:   KindApiError,
			Detail: fmt.Sprintf("%d - %s", resp.StatusCode(), resp.String()),
		}
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", &GenerationError{
			Kind:   KindMalformedResponse,
			Detail: "неожиданный формат ответа от API",
		}
	}

	content := result.Choices[0].Message.Content
	zap.L().Info("generation succeeded", zap.Int("content_length", len(content)))

	return content, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Kind: KindTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &GenerationError{Kind: KindTimeout, Err: err}
	}

	return &GenerationError{Kind: KindConnectionError, Err: err}
}
