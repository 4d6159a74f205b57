// Package openai calls any OpenAI-compatible chat-completion endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/futalk/Tarot-Reading/internal/domain"
	"github.com/futalk/Tarot-Reading/internal/ports"
)

const maxResponseBytes = 4 << 20

// Options tunes the completion request.
type Options struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
	// Timeout bounds a single upstream call. Zero leaves only the caller's
	// deadline.
	Timeout time.Duration
}

// DefaultOptions matches the sampling settings the service has always used.
func DefaultOptions() Options {
	return Options{Temperature: 0.8, MaxTokens: 2000, TopP: 0.9, Timeout: 45 * time.Second}
}

// Client implements ports.Interpreter. The endpoint, key and model come with
// every request, so one Client serves both caller and operator credentials.
type Client struct {
	httpClient *http.Client
	opts       Options
	logger     *slog.Logger
	tracer     trace.Tracer
}

func NewClient(httpClient *http.Client, opts Options, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		opts:       opts,
		logger:     logger,
		tracer:     otel.Tracer("github.com/futalk/Tarot-Reading/internal/adapters/llm/openai"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

func (c *Client) Interpret(ctx context.Context, in ports.InterpretInput) (ports.InterpretOutput, error) {
	ctx, span := c.tracer.Start(ctx, "llm.chat_completion", trace.WithAttributes(
		attribute.String("llm.model", in.Model),
		attribute.String("tarot.spread", in.Spread),
		attribute.Int("tarot.cards", len(in.Cards)),
	))
	defer span.End()

	out, err := c.interpret(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ports.InterpretOutput{}, err
	}
	return out, nil
}

func (c *Client) interpret(ctx context.Context, in ports.InterpretInput) (ports.InterpretOutput, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model: in.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(in)},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		TopP:        c.opts.TopP,
	})
	if err != nil {
		return ports.InterpretOutput{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, in.Endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.InterpretOutput{}, fmt.Errorf("%w: build request: %w", domain.ErrUpstreamLLM, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+in.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ports.InterpretOutput{}, fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
		}
		return ports.InterpretOutput{}, fmt.Errorf("%w: http call: %w", domain.ErrUpstreamLLM, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ports.InterpretOutput{}, fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
		}
		return ports.InterpretOutput{}, fmt.Errorf("%w: read response: %w", domain.ErrUpstreamLLM, err)
	}

	c.logger.DebugContext(ctx, "chat completion returned",
		"model", in.Model,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ports.InterpretOutput{}, &domain.UpstreamError{
			Status:  resp.StatusCode,
			Message: upstreamMessage(respBody, resp.StatusCode),
			Details: rawDetails(respBody),
		}
	}

	content := gjson.GetBytes(respBody, "choices.0.message.content")
	if content.Type != gjson.String || content.Str == "" {
		return ports.InterpretOutput{}, &domain.MalformedResponseError{Details: rawDetails(respBody)}
	}

	out := ports.InterpretOutput{Text: content.Str, Model: in.Model}
	if usage := gjson.GetBytes(respBody, "usage"); usage.IsObject() {
		out.Usage = json.RawMessage(usage.Raw)
	}
	return out, nil
}

// upstreamMessage prefers the provider's own error text.
func upstreamMessage(body []byte, status int) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String && msg.Str != "" {
		return msg.Str
	}
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.Str != "" {
		return msg.Str
	}
	return fmt.Sprintf("API请求失败: %d", status)
}

// rawDetails keeps a JSON payload verbatim and quotes anything else.
func rawDetails(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		return json.RawMessage(bytes.Clone(body))
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}
