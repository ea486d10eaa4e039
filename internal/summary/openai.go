package summary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"saaspulse/internal/config"
	apierrors "saaspulse/internal/errors"
	"saaspulse/internal/infrastructure"
)

// OpenAI summarizes with the chat completions API
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewOpenAI creates an OpenAI summarizer. The HTTP client is instrumented
// with OpenTelemetry.
func NewOpenAI(cfg config.SummaryConfig, logger *slog.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      infrastructure.WithComponent(logger, "summary.openai"),
	}
}

// Summarize implements Summarizer
func (o *OpenAI) Summarize(ctx context.Context, payload []byte) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", apierrors.NewExternalError("chat completion", err).WithContext("model", o.model)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := clean(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}

	o.logger.DebugContext(ctx, "summary generated",
		slog.String("model", resp.Model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("duration", time.Since(start)))

	return text, nil
}

// New returns the Summarizer cfg asks for, wrapped for deduplication
func New(cfg config.SummaryConfig, logger *slog.Logger) Summarizer {
	if !cfg.Active() {
		return Disabled{}
	}
	return NewDeduplicated(NewOpenAI(cfg, logger), cfg.Timeout)
}
