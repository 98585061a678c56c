package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(t *testing.T) Tool {
	t.Helper()
	tool, err := NewFuncTool(
		"echo",
		"Echo the input back",
		&JSONSchema{
			Type:       "object",
			Properties: map[string]any{"text": map[string]any{"type": "string"}},
			Required:   []string{"text"},
		},
		func(_ context.Context, params map[string]any) (string, error) {
			text, _ := params["text"].(string)
			return "echo: " + text, nil
		},
	)
	require.NoError(t, err)
	return tool
}

func TestNewFuncTool(t *testing.T) {
	_, err := NewFuncTool("", "desc", nil, func(context.Context, map[string]any) (string, error) {
		return "", nil
	})
	assert.Error(t, err)

	_, err = NewFuncTool("name", "desc", nil, nil)
	assert.Error(t, err)
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool(t)))

	assert.Error(t, r.Register(echoTool(t)), "duplicate names must be rejected")
	assert.Error(t, r.Register(nil))

	tool, err := r.Get("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", tool.Name())

	_, err = r.Get("missing")
	assert.Error(t, err)

	assert.Len(t, r.List(), 1)
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool(t)))

	t.Run("valid params", func(t *testing.T) {
		result, err := r.Execute(context.Background(), "echo", map[string]any{"text": "hi"})
		require.NoError(t, err)
		assert.Equal(t, "echo: hi", result.Output)
	})

	t.Run("missing required param", func(t *testing.T) {
		_, err := r.Execute(context.Background(), "echo", map[string]any{})
		assert.Error(t, err)
	})

	t.Run("wrong param type", func(t *testing.T) {
		_, err := r.Execute(context.Background(), "echo", map[string]any{"text": 42})
		assert.Error(t, err)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := r.Execute(context.Background(), "missing", nil)
		assert.Error(t, err)
	})

	t.Run("tool error propagates", func(t *testing.T) {
		boom := errors.New("boom")
		failing, err := NewFuncTool("failing", "always fails", nil,
			func(context.Context, map[string]any) (string, error) { return "", boom })
		require.NoError(t, err)
		require.NoError(t, r.Register(failing))

		_, err = r.Execute(context.Background(), "failing", nil)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRegistryDefinitions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool(t)))

	noSchema, err := NewFuncTool("bare", "no schema", nil,
		func(context.Context, map[string]any) (string, error) { return "", nil })
	require.NoError(t, err)
	require.NoError(t, r.Register(noSchema))

	defs := r.Definitions()
	require.Len(t, defs, 2)
	for _, def := range defs {
		assert.Equal(t, "function", def["type"])
		assert.NotEmpty(t, def["name"])
		assert.NotNil(t, def["parameters"], "tools without a schema get an empty object schema")
	}
}
