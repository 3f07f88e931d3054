package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"DigestEngine/internal/config"
	"DigestEngine/internal/ports"
)

// Evaluator implements ports.QualityEvaluator backed by OpenAI-compatible
// chat-completion APIs. The model is asked for a strict JSON verdict.
type Evaluator struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.QualityEvaluator = (*Evaluator)(nil)

// NewEvaluator builds a client from configuration.
func NewEvaluator(cfg config.EvaluatorConfig) *Evaluator {
	return &Evaluator{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type verdict struct {
	RecencyScore      float64 `json:"recencyScore"`
	ConnectivityScore float64 `json:"connectivityScore"`
	Reasoning         string  `json:"reasoning"`
}

// Evaluate posts the content metadata and parses the scored verdict.
// Callers substitute neutral defaults on any returned error.
func (e *Evaluator) Evaluate(ctx context.Context, title, summary, topic string, sourceDate time.Time) (ports.QualityEvaluation, error) {
	if e == nil {
		return ports.QualityEvaluation{}, fmt.Errorf("evaluator is nil")
	}
	if e.apiKey == "" || e.endpoint == "" || e.model == "" {
		return ports.QualityEvaluation{}, fmt.Errorf("evaluator misconfigured")
	}

	user, err := json.Marshal(map[string]string{
		"title":      title,
		"summary":    summary,
		"topic":      topic,
		"sourceDate": sourceDate.Format("2006-01-02"),
	})
	if err != nil {
		return ports.QualityEvaluation{}, fmt.Errorf("marshal content payload: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(e.systemPrompt)},
			{"role": "user", "content": string(user)},
		},
	})
	if err != nil {
		return ports.QualityEvaluation{}, fmt.Errorf("marshal evaluator payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.QualityEvaluation{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return ports.QualityEvaluation{}, fmt.Errorf("evaluate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ports.QualityEvaluation{}, fmt.Errorf("evaluator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return ports.QualityEvaluation{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return ports.QualityEvaluation{}, fmt.Errorf("evaluator returned no choices")
	}

	var v verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(chat.Choices[0].Message.Content)), &v); err != nil {
		return ports.QualityEvaluation{}, fmt.Errorf("malformed verdict: %w", err)
	}
	if v.RecencyScore < 0 || v.RecencyScore > 100 || v.ConnectivityScore < 0 || v.ConnectivityScore > 100 {
		return ports.QualityEvaluation{}, fmt.Errorf("verdict scores out of range: %.1f/%.1f", v.RecencyScore, v.ConnectivityScore)
	}

	return ports.QualityEvaluation{
		RecencyScore:      v.RecencyScore,
		ConnectivityScore: v.ConnectivityScore,
		Reasoning:         v.Reasoning,
	}, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You score news content. Reply with JSON: {\"recencyScore\":0-100,\"connectivityScore\":0-100,\"reasoning\":\"...\"}."
	}
	return prompt
}
