package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bachat-planner/internal/core/ai/provider"
	"bachat-planner/internal/core/ai/queue"
	"bachat-planner/internal/infrastructure/config"
)

type fakeProvider struct {
	content  string
	err      error
	timeout  time.Duration
	lastReq  *provider.Request
	deadline bool
}

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.lastReq = req
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content}, nil
}

func (f *fakeProvider) GetModel() string          { return "fake-model" }
func (f *fakeProvider) GetTimeout() time.Duration { return f.timeout }
func (f *fakeProvider) Close() error              { return nil }

func TestProcessRequest(t *testing.T) {
	p := &fakeProvider{content: `{"ok":true}`, timeout: time.Minute}
	svc := NewService(p, 0.4)

	got, err := svc.ProcessRequest(context.Background(), &provider.Request{Name: "plan", Prompt: "hello"})
	if err != nil {
		t.Fatalf("ProcessRequest() error = %v", err)
	}
	if got != `{"ok":true}` {
		t.Errorf("content = %q", got)
	}
	if p.lastReq.Temperature != 0.4 {
		t.Errorf("temperature = %v, want default 0.4", p.lastReq.Temperature)
	}
	if !p.deadline {
		t.Error("provider timeout was not applied to the context")
	}
}

func TestProcessRequestKeepsExplicitTemperature(t *testing.T) {
	p := &fakeProvider{content: "{}"}
	svc := NewService(p, 0.4)

	if _, err := svc.ProcessRequest(context.Background(), &provider.Request{Prompt: "x", Temperature: 0.9}); err != nil {
		t.Fatalf("ProcessRequest() error = %v", err)
	}
	if p.lastReq.Temperature != 0.9 {
		t.Errorf("temperature = %v, want 0.9", p.lastReq.Temperature)
	}
	if p.deadline {
		t.Error("no deadline expected when provider timeout is zero")
	}
}

func TestProcessRequestErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeProvider{err: boom}, 0)
	if _, err := svc.ProcessRequest(context.Background(), &provider.Request{Prompt: "x"}); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped boom", err)
	}

	svc = NewService(&fakeProvider{content: "   "}, 0)
	if _, err := svc.ProcessRequest(context.Background(), &provider.Request{Prompt: "x"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.Provider = "ollama"
	if _, err := NewProvider(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	cfg.AI.Provider = "openrouter"
	cfg.OpenRouter.Model = "m"
	p, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewProvider(openrouter) error = %v", err)
	}
	if p.GetModel() != "m" {
		t.Errorf("model = %q", p.GetModel())
	}
}

func TestProcessRequestUsesQueue(t *testing.T) {
	q := queue.NewManager(1, 4)
	svc := NewService(&fakeProvider{content: "{}"}, 0, WithQueue(q))

	if _, err := svc.ProcessRequest(context.Background(), &provider.Request{Prompt: "x"}); err != nil {
		t.Fatalf("ProcessRequest() error = %v", err)
	}
	if s := svc.QueueStatus(); s.ProcessedCount != 1 || s.InFlight != 0 {
		t.Errorf("queue status = %+v", s)
	}

	_ = svc.Close()
	if _, err := svc.ProcessRequest(context.Background(), &provider.Request{Prompt: "x"}); !errors.Is(err, queue.ErrClosed) {
		t.Errorf("after Close error = %v, want ErrClosed", err)
	}
}
