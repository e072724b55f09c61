package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bachat-planner/internal/core/ai/gemini"
	"bachat-planner/internal/core/ai/openrouter"
	"bachat-planner/internal/core/ai/provider"
	"bachat-planner/internal/core/ai/queue"
	"bachat-planner/internal/infrastructure/config"
	"bachat-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrEmptyResponse 模型回傳空內容
var ErrEmptyResponse = errors.New("empty AI response")

// Service AI 服務
type Service struct {
	provider    provider.Provider
	temperature float32
	queue       *queue.Manager
}

// Option 服務選項
type Option func(*Service)

// WithQueue 透過隊列限制同時進行的模型呼叫
func WithQueue(q *queue.Manager) Option {
	return func(s *Service) {
		s.queue = q
	}
}

// NewProvider 依設定建立模型供應商
func NewProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.AI.Provider {
	case "openrouter":
		return openrouter.NewClient(provider.Config{
			APIKey:    cfg.OpenRouter.APIKey,
			Model:     cfg.OpenRouter.Model,
			Timeout:   cfg.OpenRouter.Timeout,
			MaxTokens: cfg.OpenRouter.MaxTokens,
			BaseURL:   cfg.OpenRouter.BaseURL,
		}), nil
	case "gemini", "":
		return gemini.NewClient(ctx, provider.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
	}
}

// NewService 創建 AI 服務
func NewService(p provider.Provider, temperature float32, opts ...Option) *Service {
	s := &Service{
		provider:    p,
		temperature: temperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessRequest 統一對外方法，回傳模型輸出的原始文字
func (s *Service) ProcessRequest(ctx context.Context, req *provider.Request) (string, error) {
	if req.Temperature == 0 {
		req.Temperature = s.temperature
	}

	if s.queue != nil {
		release, err := s.queue.Acquire(ctx)
		if err != nil {
			return "", fmt.Errorf("AI queue: %w", err)
		}
		defer release()
	}

	if timeout := s.provider.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	common.LogAICall(req.Name, s.provider.GetModel(), time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("AI service error: %w", err)
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}

	common.LogDebug("AI 回應內容",
		zap.String("request", req.Name),
		zap.Int("ai_response_length", len(resp.Content)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Content, nil
}

// Model 目前使用的模型名稱
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// QueueStatus 隊列狀態，未設定隊列時回傳 nil
func (s *Service) QueueStatus() *queue.Status {
	if s.queue == nil {
		return nil
	}
	return s.queue.GetQueueStatus()
}

// Close 關閉隊列與底層供應商
func (s *Service) Close() error {
	if s.queue != nil {
		s.queue.Close()
	}
	return s.provider.Close()
}
