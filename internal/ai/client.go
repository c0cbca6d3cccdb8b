// Package ai предоставляет клиент для обращения к OpenAI-совместимому API.
// Модель выбирается на каждый запрос: пользователь фиксирует ее при
// инициализации партии.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soup-server/internal/models"
	"soup-server/internal/pricing"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
	openaigo "github.com/sashabaranov/go-openai"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

// Usage содержит информацию об использовании токенов одним запросом.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Generator - контракт вызова языковой модели: текст промпта и id модели
// на входе, текст ответа и счетчики токенов на выходе.
type Generator interface {
	Generate(ctx context.Context, model string, prompt string) (string, Usage, error)
}

// Config содержит конфигурацию для клиента AI API.
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

// Client реализует Generator поверх go-openai.
type Client struct {
	client      *openaigo.Client
	timeout     time.Duration
	temperature float32
}

// Compile-time check to ensure Client implements Generator
var _ Generator = (*Client)(nil)

// New создает новый экземпляр клиента AI API.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для AI API")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	config := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:      openaigo.NewClientWithConfig(config),
		timeout:     cfg.Timeout,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Generate выполняет один запрос к модели и возвращает текст ответа вместе
// со счетчиками токенов. Если relay не вернул блок usage, счетчики
// оцениваются через tiktoken.
func (c *Client) Generate(ctx context.Context, model string, prompt string) (string, Usage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	log.Debug().Str("model", model).Int("prompt_bytes", len(prompt)).Msg("Отправка запроса к AI")

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: model,
		Messages: []openaigo.ChatCompletionMessage{
			{
				Role:    openaigo.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
	})

	duration := time.Since(startTime)

	if err != nil {
		log.Error().Err(err).Str("model", model).Dur("duration", duration).Msg("Ошибка от AI API")
		aiRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", Usage{}, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Error().Str("model", model).Dur("duration", duration).Msg("AI API вернул пустой ответ")
		aiRequestsTotal.WithLabelValues(model, "error_empty_response").Inc()
		return "", Usage{}, fmt.Errorf("%w: получен пустой ответ", models.ErrGenerationFailed)
	}

	reply := resp.Choices[0].Message.Content

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	status := "success"
	if usage.TotalTokens == 0 {
		// Некоторые relay не возвращают usage, оцениваем сами
		usage = estimateUsage(model, prompt, reply)
		status = "success_estimated"
	}

	aiRequestsTotal.WithLabelValues(model, status).Inc()
	aiRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	aiPromptTokens.WithLabelValues(model).Observe(float64(usage.PromptTokens))
	aiCompletionTokens.WithLabelValues(model).Observe(float64(usage.CompletionTokens))
	if cost := pricing.ComputeCost(model, usage.PromptTokens, usage.CompletionTokens); cost > 0 {
		aiEstimatedCostUSD.WithLabelValues(model).Add(cost)
	}

	log.Debug().
		Str("model", model).
		Dur("duration", duration).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Msg("Ответ AI получен")

	return reply, usage, nil
}

// estimateUsage считает токены через tiktoken, когда API не вернул usage.
func estimateUsage(model, prompt, reply string) Usage {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			log.Warn().Err(err).Str("model", model).Msg("Не удалось получить кодировку tiktoken, usage останется нулевым")
			return Usage{}
		}
	}
	promptTokens := len(tke.Encode(prompt, nil, nil))
	completionTokens := len(tke.Encode(reply, nil, nil))
	return Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}
