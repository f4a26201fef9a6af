package validate

import (
	"fmt"
	"regexp"
	"strings"

	"longcatnode/internal/core"

	"github.com/bytedance/sonic"
)

var toolNameRegex = regexp.MustCompile(core.ToolNamePattern)

// ParseToolSpecs turns user-entered tool specs into tool definitions.
// Any spec with an empty name or a schema that is not valid JSON fails the whole list.
func ParseToolSpecs(specs []core.ToolSpec, logger core.Logger) ([]core.ToolDefinition, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	definitions := make([]core.ToolDefinition, 0, len(specs))
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, &core.MalformedToolSchemaError{Index: i, Err: core.ErrToolNameRequired}
		}
		if !isValidToolName(name) {
			logger.Warn("Tool name %q does not match %s; upstream may reject it", name, core.ToolNamePattern)
		}

		params, err := parseParameters(spec.Parameters)
		if err != nil {
			return nil, &core.MalformedToolSchemaError{Tool: name, Index: i, Err: err}
		}
		if _, isObject := params.(map[string]any); !isObject {
			logger.Warn("Tool %s: parameters schema is %T, expected a JSON object", name, params)
		}

		definitions = append(definitions, core.ToolDefinition{
			Name:        name,
			Description: spec.Description,
			Parameters:  params,
		})
	}

	return definitions, nil
}

func parseParameters(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return emptyObjectSchema(), nil
	}

	var params any
	if err := sonic.UnmarshalString(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if params == nil {
		return emptyObjectSchema(), nil
	}
	return params, nil
}

func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       core.SchemaTypeObject,
		"properties": map[string]any{},
	}
}

func isValidToolName(name string) bool {
	return len(name) <= core.MaxToolNameLength && toolNameRegex.MatchString(name)
}

// ValidateToolCall checks one upstream tool_calls entry. Entries are passed
// through regardless; the error only describes what is wrong with the shape.
func ValidateToolCall(raw any) error {
	tc, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("tool call is %T, not an object", raw)
	}
	if id, _ := tc["id"].(string); id == "" {
		return fmt.Errorf("tool call ID is empty or not a string")
	}
	function, ok := tc["function"].(map[string]any)
	if !ok {
		return fmt.Errorf("tool call function is missing")
	}
	if name, _ := function["name"].(string); name == "" {
		return fmt.Errorf("tool call function name is empty")
	}
	switch arguments := function["arguments"].(type) {
	case nil:
	case string:
		if arguments != "" {
			var js any
			if err := sonic.UnmarshalString(arguments, &js); err != nil {
				return fmt.Errorf("tool call arguments is not valid JSON: %w", err)
			}
		}
	default:
		return fmt.Errorf("tool call arguments is %T, not a JSON string", arguments)
	}
	return nil
}
