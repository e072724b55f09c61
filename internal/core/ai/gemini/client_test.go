package gemini

import (
	"testing"

	"bachat-planner/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
)

func TestToGenaiSchema(t *testing.T) {
	in := &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"name":  {Type: provider.TypeString},
			"score": {Type: provider.TypeNumber},
			"ok":    {Type: provider.TypeBoolean},
			"steps": {Type: provider.TypeArray, Items: &provider.Schema{Type: provider.TypeString}},
		},
		Required: []string{"name", "steps"},
	}

	out := ToGenaiSchema(in)
	if out.Type != genai.TypeObject {
		t.Fatalf("root type = %v, want object", out.Type)
	}
	if len(out.Properties) != 4 {
		t.Fatalf("got %d properties, want 4", len(out.Properties))
	}
	if out.Properties["score"].Type != genai.TypeNumber {
		t.Errorf("score type = %v", out.Properties["score"].Type)
	}
	if out.Properties["ok"].Type != genai.TypeBoolean {
		t.Errorf("ok type = %v", out.Properties["ok"].Type)
	}
	steps := out.Properties["steps"]
	if steps.Type != genai.TypeArray || steps.Items == nil || steps.Items.Type != genai.TypeString {
		t.Errorf("steps schema not converted: %+v", steps)
	}
	if len(out.Required) != 2 {
		t.Errorf("required = %v", out.Required)
	}
	if ToGenaiSchema(nil) != nil {
		t.Error("nil schema should stay nil")
	}
}
