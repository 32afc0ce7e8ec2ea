package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	apperrors "cmms-system/pkg/errors"
)

const defaultModel = "gemini-2.5-flash"

type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGeminiClient без ключа возвращает DisabledClient, чтобы приложение запускалось и без ИИ.
func NewGeminiClient(ctx context.Context, apiKey, model string, requestsPerMinute int, timeout time.Duration, logger *zap.Logger) (Client, error) {
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY не задан, ИИ-функции отключены")
		return DisabledClient{}, nil
	}
	if model == "" {
		model = defaultModel
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать клиент Gemini: %w", err)
	}

	every := time.Minute / time.Duration(requestsPerMinute)
	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Every(every), requestsPerMinute),
		logger:  logger.Named("ai"),
	}, nil
}

func (g *GeminiClient) Enabled() bool { return true }

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrAIUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	if err != nil {
		g.logger.Error("Ошибка запроса к Gemini", zap.String("model", g.model), zap.Error(err))
		return "", fmt.Errorf("%w: %v", apperrors.ErrAIUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: пустой ответ модели", apperrors.ErrAIMalformedResponse)
	}
	g.logger.Debug("Ответ Gemini получен",
		zap.String("model", g.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("response_len", len(text)),
		zap.Duration("took", time.Since(started)))
	return text, nil
}
