// Package tools provides the function-calling side of the realtime client:
// a registry of named tools with JSON-schema validated parameters, exported
// as realtime API tool definitions.
package tools

import (
	"context"
	"errors"
)

// JSONSchema is the subset of JSON Schema the realtime API accepts for
// function parameters and that the validator understands.
type JSONSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// Result is the outcome of a tool invocation. Output is what goes back to
// the model as the function_call_output payload.
type Result struct {
	Output string
	Data   any
}

// Tool is a callable the model can invoke by name.
type Tool interface {
	Name() string
	Description() string
	Schema() *JSONSchema
	Execute(ctx context.Context, params map[string]any) (*Result, error)
}

// FuncTool adapts a plain function into a Tool.
type FuncTool struct {
	name        string
	description string
	schema      *JSONSchema
	fn          func(ctx context.Context, params map[string]any) (string, error)
}

func NewFuncTool(
	name, description string,
	schema *JSONSchema,
	fn func(ctx context.Context, params map[string]any) (string, error),
) (*FuncTool, error) {
	if name == "" {
		return nil, errors.New("tool name is empty")
	}
	if fn == nil {
		return nil, errors.New("tool function is nil")
	}
	return &FuncTool{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}, nil
}

func (t *FuncTool) Name() string {
	return t.name
}

func (t *FuncTool) Description() string {
	return t.description
}

func (t *FuncTool) Schema() *JSONSchema {
	return t.schema
}

func (t *FuncTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	out, err := t.fn(ctx, params)
	if err != nil {
		return nil, err
	}
	return &Result{Output: out}, nil
}
