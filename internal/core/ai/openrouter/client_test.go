package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bachat-planner/internal/core/ai/provider"
)

func TestGenerateSendsJSONSchema(t *testing.T) {
	var got Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"{\"name\":\"Poha\"}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer ts.Close()

	c := NewClient(provider.Config{APIKey: "test-key", Model: "test/model", BaseURL: ts.URL, MaxTokens: 100, Timeout: 5 * time.Second})
	defer c.Close()

	resp, err := c.Generate(context.Background(), &provider.Request{
		Name:   "meal",
		Prompt: "swap this",
		Schema: &provider.Schema{Type: provider.TypeObject, Properties: map[string]*provider.Schema{"name": {Type: provider.TypeString}}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != `{"name":"Poha"}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}

	if got.Model != "test/model" || got.MaxTokens != 100 {
		t.Errorf("request model/max_tokens = %q/%d", got.Model, got.MaxTokens)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_schema" {
		t.Fatalf("response_format missing: %+v", got.ResponseFormat)
	}
	if got.ResponseFormat.JSONSchema.Name != "meal" {
		t.Errorf("schema name = %q", got.ResponseFormat.JSONSchema.Name)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "swap this" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"invalid key"}}`, wantErr: "invalid key"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":""}}]}`, wantErr: "empty content"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := NewClient(provider.Config{APIKey: "k", Model: "m", BaseURL: ts.URL})
			_, err := c.Generate(context.Background(), &provider.Request{Prompt: "p"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Generate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
