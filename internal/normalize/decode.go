package normalize

import (
	"fmt"
	"strconv"

	"longcatnode/internal/core"
	"longcatnode/internal/util"
)

// DecodeResponse parses a raw upstream body. Only a body that is not a JSON
// object is a transport failure; fields of an unexpected shape read as empty
// and tool_calls and usage are kept as decoded.
func DecodeResponse(body []byte) (*core.ChatCompletionResponse, error) {
	var raw map[string]any
	if err := util.UnmarshalJSON(body, &raw); err != nil {
		return nil, &core.TransportError{
			Message: fmt.Sprintf("undecodable response body: %v", err),
			Err:     err,
		}
	}
	if raw == nil {
		return nil, &core.TransportError{Message: "undecodable response body: not a JSON object"}
	}

	resp := &core.ChatCompletionResponse{
		ID:      stringField(raw, "id"),
		Object:  stringField(raw, "object"),
		Created: int64Field(raw, "created"),
		Model:   stringField(raw, "model"),
		Usage:   raw["usage"],
	}

	choices, _ := raw["choices"].([]any)
	for i, entry := range choices {
		fields, _ := entry.(map[string]any)
		choice := core.ChatCompletionChoice{
			Index:        i,
			FinishReason: stringField(fields, "finish_reason"),
		}
		if message, ok := fields["message"].(map[string]any); ok {
			choice.Message = decodeMessage(message)
		}
		resp.Choices = append(resp.Choices, choice)
	}

	return resp, nil
}

func decodeMessage(fields map[string]any) *core.ResponseMessage {
	message := &core.ResponseMessage{
		Role:     stringField(fields, "role"),
		Content:  fields["content"],
		Thinking: stringField(fields, "thinking"),
	}
	switch toolCalls := fields["tool_calls"].(type) {
	case nil:
	case []any:
		message.ToolCalls = toolCalls
	default:
		message.ToolCalls = []any{toolCalls}
	}
	return message
}

// stringField reads a string, rendering numbers and booleans as text.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func int64Field(fields map[string]any, key string) int64 {
	if v, ok := fields[key].(float64); ok {
		return int64(v)
	}
	return 0
}
