package handler

import (
	"context"
	"encoding/json"

	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
)

// Sum adds two numbers. The smallest useful handler; it doubles as the
// smoke-test task for the whole pipeline.
type Sum struct{}

var _ core.Handler = (*Sum)(nil)

// NewSum returns the sum handler.
func NewSum() *Sum {
	return &Sum{}
}

// Execute reads parameters a and b and returns their sum as result.
func (h *Sum) Execute(_ context.Context, params map[string]any) (map[string]any, error) {
	a, err := numberParam(params, "a")
	if err != nil {
		return nil, err
	}
	b, err := numberParam(params, "b")
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": a + b}, nil
}

func numberParam(params map[string]any, key string) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return 0, model.NewHandlerError("missing parameter %q", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, model.NewHandlerError("parameter %q is not a number", key)
		}
		return f, nil
	default:
		return 0, model.NewHandlerError("parameter %q is not a number", key)
	}
}
