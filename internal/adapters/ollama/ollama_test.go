package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetbuddy/internal/insights"
)

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(generateResponse{Model: got.Model, Response: `{"tips":[]}`, Done: true})
	}))
	defer srv.Close()

	a := New(srv.URL+"/", "mistral", nil)
	out, err := a.Generate(context.Background(), insights.Prompt{System: "sys", User: "usr", JSON: true, MaxTokens: 300})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `{"tips":[]}` {
		t.Fatalf("response = %q", out)
	}
	if got.Model != "mistral" || got.Stream || got.Format != "json" || got.System != "sys" || got.Prompt != "usr" {
		t.Fatalf("request = %+v", got)
	}
	if got.Options == nil || got.Options.NumPredict != 300 {
		t.Fatalf("options = %+v", got.Options)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "model not found", http.StatusNotFound) }},
		{"empty", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"response":"","done":true}`)) }},
		{"garbage", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`not json`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			if _, err := New(srv.URL, "", nil).Generate(context.Background(), insights.Prompt{User: "x"}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
