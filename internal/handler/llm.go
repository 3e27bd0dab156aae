package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/target/tasker/config"
	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
)

const (
	defaultMaxTokens = 1024
	maxTokensCeiling = 4096
)

// QueryLLM sends a prompt to an Ollama-served model and returns the
// generated text with token accounting.
type QueryLLM struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

var _ core.Handler = (*QueryLLM)(nil)

// NewQueryLLM builds the query_llm handler from Ollama connection settings.
func NewQueryLLM(cfg config.OllamaConfig) (*QueryLLM, error) {
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	return &QueryLLM{
		client:  api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Execute generates a completion for the prompt parameter. max_tokens is
// optional and caps the response length.
func (h *QueryLLM) Execute(ctx context.Context, params map[string]any) (map[string]any, error) {
	prompt, err := stringParam(params, "prompt")
	if err != nil {
		return nil, err
	}

	maxTokens := defaultMaxTokens
	if raw, ok := params["max_tokens"]; ok {
		maxTokens, err = toInt(raw)
		if err != nil || maxTokens < 1 || maxTokens > maxTokensCeiling {
			return nil, model.NewHandlerError("parameter \"max_tokens\" must be an integer between 1 and %d", maxTokensCeiling)
		}
	}
	opts := map[string]any{"num_predict": maxTokens}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	stream := false
	req := &api.GenerateRequest{
		Model:   h.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: opts,
	}

	var resp api.GenerateResponse
	err = h.client.Generate(ctx, req, func(r api.GenerateResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return nil, model.WrapHandlerError(err, "llm generation failed")
	}

	return map[string]any{
		"response": resp.Response,
		"model":    h.model,
		"usage": map[string]any{
			"input_tokens":  resp.PromptEvalCount,
			"output_tokens": resp.EvalCount,
		},
	}, nil
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("not an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("not an integer")
	}
}
