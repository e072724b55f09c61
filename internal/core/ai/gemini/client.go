package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bachat-planner/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client Google Gemini API 客戶端
type Client struct {
	client *genai.Client
	cfg    provider.Config
}

// NewClient 創建新的 Gemini 客戶端
func NewClient(ctx context.Context, cfg provider.Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	// GenerativeModel 帶有請求層級設定，每次呼叫各自建立
	model := c.client.GenerativeModel(c.cfg.Model)
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = ToGenaiSchema(req.Schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("generated content is not text")
	}

	out := &provider.Response{Content: sb.String()}
	if resp.UsageMetadata != nil {
		out.Usage = provider.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// ToGenaiSchema 將共用 schema 轉為 genai.Schema
func ToGenaiSchema(s *provider.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:     toGenaiType(s.Type),
		Required: s.Required,
		Items:    ToGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = ToGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t provider.SchemaType) genai.Type {
	switch t {
	case provider.TypeObject:
		return genai.TypeObject
	case provider.TypeArray:
		return genai.TypeArray
	case provider.TypeNumber:
		return genai.TypeNumber
	case provider.TypeInteger:
		return genai.TypeInteger
	case provider.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
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
	return c.client.Close()
}
