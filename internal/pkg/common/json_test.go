package common

import (
	"errors"
	"net/http"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "chatter around object", input: "Here you go: {\"a\":{\"b\":2}} enjoy", want: `{"a":{"b":2}}`},
		{name: "no object", input: "sorry, I cannot help", wantErr: true},
		{name: "reversed braces", input: "} {", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	if err := ParseJSON(`{"a":1} {"b":2}`, &v); err == nil {
		t.Fatal("expected error for trailing JSON value")
	}
	if err := ParseJSON(`{"a":1}`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseJSONBytesStrictRejectsUnknownFields(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	if err := ParseJSONBytesStrict([]byte(`{"a":1,"b":2}`), &v); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestCustomErrorResponse(t *testing.T) {
	wrapped := ErrNoPlan.WithErr(errors.New("boom"))
	var target *CustomError
	if !errors.As(wrapped, &target) || target.Code != ErrCodeNoPlan || target.Status != http.StatusConflict {
		t.Fatalf("unexpected custom error: %+v", target)
	}

	ce := ErrInternalError.WithErr(errors.New("plain"))
	if ce.Status != http.StatusInternalServerError {
		t.Fatalf("plain errors should map to 500, got %d", ce.Status)
	}
	if resp := ce.Response(false); resp.Details != "" {
		t.Errorf("details leaked outside debug mode: %q", resp.Details)
	}
	if resp := ce.Response(true); resp.Details != "plain" {
		t.Errorf("details = %q, want %q", resp.Details, "plain")
	}
}
