package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bachat-planner/internal/core/ai/provider"
	"bachat-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	cfg    provider.Config
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchema response_format 內的 schema 描述
type JSONSchema struct {
	Name   string           `json:"name"`
	Strict bool             `json:"strict"`
	Schema *provider.Schema `json:"schema"`
}

// ResponseFormat 要求結構化輸出
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// Request 表示 API 請求
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Usage   provider.Usage `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// Error 表示 API 錯誤
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://bachat-bhojan.app").
		SetHeader("X-Title", "Bachat Bhojan Planner")

	return &Client{
		client: client,
		cfg:    cfg,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := &Request{
		Model: c.cfg.Model,
		Messages: []Message{
			{
				Role:    "user",
				Content: req.Prompt,
			},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.Schema != nil {
		name := req.Name
		if name == "" {
			name = "response"
		}
		body.ResponseFormat = &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   name,
				Strict: false,
				Schema: req.Schema,
			},
		}
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.String("request", req.Name),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		var apiErr Error
		if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return nil, fmt.Errorf("OpenRouter API returned error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty content in OpenRouter response")
	}

	return &provider.Response{
		Content: content,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取當前使用的模型名稱
func (c *Client) GetModel() string {
	return c.cfg.Model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.cfg.Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
