// Package ollama talks to a local Ollama server's /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"budgetbuddy/internal/insights"
)

const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "llama3.1"
)

var _ insights.TextGenerator = (*Adapter)(nil)

type Adapter struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string, httpClient *http.Client) *Adapter {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Adapter{baseURL: strings.TrimRight(baseURL, "/"), model: model, httpClient: httpClient}
}

type generateRequest struct {
	Model   string   `json:"model"`
	System  string   `json:"system,omitempty"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (a *Adapter) Generate(ctx context.Context, p insights.Prompt) (string, error) {
	payload := generateRequest{Model: a.model, System: p.System, Prompt: p.User}
	if p.JSON {
		payload.Format = "json"
	}
	if p.MaxTokens > 0 {
		payload.Options = &options{NumPredict: p.MaxTokens}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama API connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if out.Response == "" {
		return "", errors.New("ollama returned empty response")
	}
	return out.Response, nil
}
