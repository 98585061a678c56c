package tools

import (
	"fmt"
	"math"
)

// Validator validates tool parameters before execution.
type Validator interface {
	Validate(params map[string]any, schema *JSONSchema) error
}

// DefaultValidator implements a minimal JSON Schema validator covering
// required fields and primitive type checks.
type DefaultValidator struct{}

// Validate ensures that params satisfy the provided schema.
func (DefaultValidator) Validate(params map[string]any, schema *JSONSchema) error {
	if schema == nil {
		return nil
	}
	if params == nil {
		params = map[string]any{}
	}

	for _, field := range schema.Required {
		if _, exists := params[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	if len(schema.Properties) == 0 {
		return nil
	}

	for key, value := range params {
		propDef, ok := schema.Properties[key]
		if !ok {
			continue
		}
		expected := expectedType(propDef)
		if expected == "" {
			continue
		}
		if err := validateType(value, expected); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

func expectedType(definition any) string {
	def, ok := definition.(map[string]any)
	if !ok {
		return ""
	}
	v, _ := def["type"].(string)
	return v
}

func validateType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			return fmt.Errorf("expected number, got %T", value)
		}
	case "integer":
		switch v := value.(type) {
		case int, int64:
		case float64:
			if v != math.Trunc(v) {
				return fmt.Errorf("expected integer, got fractional number")
			}
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
	}
	return nil
}
